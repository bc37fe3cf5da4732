package shows

// ShowInput is one date with its screening times, as submitted by the admin
// show-creation screen
type ShowInput struct {
	Date  string   `json:"date" binding:"required"`             // "2006-01-02"
	Times []string `json:"times" binding:"required,min=1,dive"` // "15:04"
}

// AddShowsRequest bulk-creates shows for one movie
type AddShowsRequest struct {
	MovieID    string      `json:"movie_id" binding:"required"`
	ShowsInput []ShowInput `json:"shows_input" binding:"required,min=1,dive"`
	ShowPrice  float64     `json:"show_price" binding:"required,gt=0"`
}
