package domain

import (
	"time"
)

// Domain represents a user-owned custom hostname that can receive redirect
// traffic once it has been verified and activated by the surrounding
// management layer. The router only ever reads these records.
type Domain struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Hostname   string    `gorm:"uniqueIndex;not null;size:253" json:"hostname"` // stored lowercase
	IsActive   bool      `gorm:"default:false;index" json:"is_active"`
	IsVerified bool      `gorm:"default:false" json:"is_verified"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Domain) TableName() string {
	return "domains"
}

// Link maps a short path under a domain to one or more weighted target URLs.
// (DomainID, ShortPath) is unique; TotalClicks is an approximate counter that
// the durable store may briefly lag behind the in-memory value.
type Link struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	DomainID    uint        `gorm:"not null;uniqueIndex:idx_domain_path" json:"domain_id"`
	ShortPath   string      `gorm:"not null;size:512;uniqueIndex:idx_domain_path" json:"short_path"`
	TargetURLs  []TargetURL `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"target_urls"`
	TotalClicks int64       `gorm:"default:0" json:"total_clicks"`
	LastUsed    *time.Time  `json:"last_used,omitempty"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Link) TableName() string {
	return "links"
}

// TargetURL is one weighted, independently toggleable destination of a link.
type TargetURL struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	LinkID   uint   `gorm:"not null;index" json:"link_id"`
	URL      string `gorm:"not null;type:text" json:"url"`
	Weight   int    `gorm:"default:1" json:"weight"` // >= 0
	IsActive bool   `gorm:"default:true" json:"is_active"`
	Position int    `gorm:"default:0" json:"position"` // preserves the owner's ordering
}

// TableName specifies the table name for GORM
func (TargetURL) TableName() string {
	return "target_urls"
}

// Target is the selection view of a TargetURL, carried by cache snapshots and
// consumed by the weighted selector.
type Target struct {
	URL      string `json:"url"`
	Weight   int    `json:"weight"`
	IsActive bool   `json:"is_active"`
}

// ActiveTargets filters a target list down to the active entries.
// Order is preserved so selection stays reproducible under a fixed draw.
func ActiveTargets(targets []Target) []Target {
	active := make([]Target, 0, len(targets))
	for _, t := range targets {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active
}

// Click is the immutable record of one resolved redirect. The router only
// inserts these; retention and deletion are external concerns.
type Click struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LinkID    uint      `gorm:"not null;index:idx_click_link,priority:1" json:"link_id"`
	DomainID  uint      `gorm:"not null;index:idx_click_domain,priority:1" json:"domain_id"`
	TargetURL string    `gorm:"not null;type:text" json:"target_url"`
	IP        string    `gorm:"size:45" json:"ip"` // IPv6 max length
	UserAgent string    `gorm:"type:text" json:"user_agent"`
	Referer   string    `gorm:"type:text" json:"referer"`
	Timestamp time.Time `gorm:"index:idx_click_link,priority:2;index:idx_click_domain,priority:2" json:"timestamp"`
}

// TableName specifies the table name for GORM
func (Click) TableName() string {
	return "clicks"
}

// ClickEvent is the value handed to the click recorder once per resolved
// redirect. It carries everything needed for the two durable writes.
type ClickEvent struct {
	LinkID    uint
	DomainID  uint
	TargetURL string
	IP        string
	UserAgent string
	Referer   string
	Timestamp time.Time
}

// RequestMeta holds the request attributes the resolver extracts for click
// tracking. The surrounding HTTP layer fills it from literal header values.
type RequestMeta struct {
	IP        string
	UserAgent string
	Referer   string
}
