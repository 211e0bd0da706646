package domain

import "time"

// Overview is the admin dashboard summary.
type Overview struct {
	Counts         OverviewCounts `json:"counts"`
	TotalRevenue   float64        `json:"totalRevenue"`
	LowStock       []Product      `json:"lowStock"`
	OrdersByStatus map[string]int `json:"ordersByStatus"`
	RecentOrders   []Order        `json:"recentOrders"`
	RecentProducts []Product      `json:"recentProducts"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}

// OverviewCounts holds the record totals shown on the dashboard.
type OverviewCounts struct {
	Products   int `json:"products"`
	Categories int `json:"categories"`
	Orders     int `json:"orders"`
}

// AdminData is the summary behind the admin UI's shared header: record
// counts, headline stats and the latest activity.
type AdminData struct {
	Counts      AdminCounts `json:"counts"`
	Stats       AdminStats  `json:"stats"`
	Recent      AdminRecent `json:"recent"`
	GeneratedAt time.Time   `json:"generatedAt"`
}

// AdminCounts holds record totals. Revenue excludes cancelled orders.
type AdminCounts struct {
	Users      int     `json:"users"`
	Products   int     `json:"products"`
	Categories int     `json:"categories"`
	Orders     int     `json:"orders"`
	Revenue    float64 `json:"revenue"`
}

// AdminStats holds the headline figures. LowStock is a count of products.
type AdminStats struct {
	LowStock       int            `json:"lowStock"`
	ActiveUsers    int            `json:"activeUsers"`
	OrdersByStatus map[string]int `json:"ordersByStatus"`
}

// AdminRecent lists the latest orders and products.
type AdminRecent struct {
	Orders   []Order   `json:"orders"`
	Products []Product `json:"products"`
}

// OrphanCategory is a product category string with no matching Category.
type OrphanCategory struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}

// ConsistencyReport lists catalog inconsistencies found by a check run.
type ConsistencyReport struct {
	OrphanCategories []OrphanCategory `json:"orphanCategories"`
	CheckedAt        time.Time        `json:"checkedAt"`
}

// Consistent reports whether the check found nothing.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.OrphanCategories) == 0
}
