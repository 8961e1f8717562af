package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is an ordered list of strings stored as a JSON array
type StringList []string

// Value implements the driver.Valuer interface
func (a StringList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *StringList) Scan(value interface{}) error {
	if value == nil {
		*a = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// DisplayText is a free-form recipe attribute shown as-is. Backends send
// numbers for fields like calories, so a JSON number or boolean decodes to its
// literal text.
type DisplayText string

// UnmarshalJSON implements json.Unmarshaler
func (d *DisplayText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DisplayText(s)
	case '{', '[':
		return fmt.Errorf("display field must be text or a number, got %s", data)
	default:
		if !json.Valid(data) {
			return fmt.Errorf("invalid display field %s", data)
		}
		*d = DisplayText(data)
	}
	return nil
}

// Recipe is one generated suggestion. Ids are only unique within the batch
// that produced them.
type Recipe struct {
	ID           int         `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	CookTime     DisplayText `json:"cookTime"`
	Difficulty   DisplayText `json:"difficulty"`
	Calories     DisplayText `json:"calories"`
	Ingredients  StringList  `json:"ingredients"`
	Instructions StringList  `json:"instructions"`
}

// FindRecipe returns the first recipe in list with the given id.
func FindRecipe(list []Recipe, id int) (Recipe, bool) {
	for _, r := range list {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

// KVEntry is one row of the key-value persistence table
type KVEntry struct {
	Key       string    `gorm:"column:namespace_key;primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the gorm default
func (KVEntry) TableName() string {
	return "kv_entries"
}
