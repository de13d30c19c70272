package models

// DailyCount is one point of a seven-day series.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// DashboardMetrics is the usage summary rendered at the top of the dashboard.
type DashboardMetrics struct {
	TotalUsers         int          `json:"totalUsers"`
	ActiveUsers        int          `json:"activeUsers"`
	TotalConversations int          `json:"totalConversations"`
	AvgResponseTime    float64      `json:"avgResponseTime"`
	DailyActiveUsers   []DailyCount `json:"dailyActiveUsers"`
	ConversationVolume []DailyCount `json:"conversationVolume"`
	AvgSessionDuration float64      `json:"avgSessionDuration"`
	ResponseRate       float64      `json:"responseRate"`
	AvgLatency         float64      `json:"avgLatency"`
	ErrorRate          float64      `json:"errorRate"`
}
