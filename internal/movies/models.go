package movies

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringList is a JSONB-backed list of strings (genre names)
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// CastMember is one entry of a movie's cast
type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// CastList is a JSONB-backed list of cast members
type CastList []CastMember

func (l CastList) Value() (driver.Value, error) {
	if l == nil {
		l = CastList{}
	}
	return json.Marshal(l)
}

func (l *CastList) Scan(value interface{}) error {
	if value == nil {
		*l = CastList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for CastList")
	}
}

// Movie is a locally stored copy of external catalog metadata. The primary
// key is the catalog's movie id so repeated show creation for the same movie
// reuses the stored row instead of refetching.
type Movie struct {
	ID               string     `json:"id" gorm:"primaryKey;size:32"`
	Title            string     `json:"title" gorm:"not null;size:255"`
	Overview         string     `json:"overview" gorm:"type:text"`
	PosterPath       string     `json:"poster_path" gorm:"size:500"`
	BackdropPath     string     `json:"backdrop_path" gorm:"size:500"`
	Genres           StringList `json:"genres" gorm:"type:jsonb;default:'[]'"`
	Casts            CastList   `json:"casts" gorm:"type:jsonb;default:'[]'"`
	ReleaseDate      string     `json:"release_date" gorm:"size:16"`
	OriginalLanguage string     `json:"original_language" gorm:"size:8"`
	Tagline          string     `json:"tagline" gorm:"size:500"`
	VoteAverage      float64    `json:"vote_average"`
	Runtime          int        `json:"runtime"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Movie) TableName() string {
	return "movies"
}
