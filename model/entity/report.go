package entity

import "time"

// ReportRun 每生成一次报表记一条，报表目录里的 lastGenerated 从这里取
type ReportRun struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	ReportID    string    `gorm:"size:64;index:idx_report_generated,priority:1" json:"reportId"`
	Format      string    `gorm:"size:16" json:"format"`
	Department  string    `gorm:"size:128" json:"department,omitempty"`
	From        string    `gorm:"size:32" json:"from,omitempty"`
	GeneratedBy string    `gorm:"size:128" json:"generatedBy,omitempty"`
	Rows        int       `json:"rows"`
	GeneratedAt time.Time `gorm:"index:idx_report_generated,priority:2" json:"generatedAt"`
}

func (ReportRun) TableName() string { return "report_runs" }
