package domain

import "time"

type Property struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"type:text;not null;uniqueIndex:ux_properties_code"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Address   *string   `json:"address,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Property) TableName() string { return "properties" }
