package chat

import (
	"time"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
)

// Session captures an anonymous farmer conversation and its advisory preferences.
type Session struct {
	ID        string                `json:"id"`
	District  string                `json:"district"`
	Language  advisory.LanguageCode `json:"language"`
	Soil      *advisory.SoilReading `json:"soil,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
}
