package models

import "time"

// Backup 一次备份文件的记录
type Backup struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FileName  string `gorm:"size:128;not null" json:"file_name"`
	FilePath  string `gorm:"size:255;not null" json:"-"`
	Size      int64  `json:"size"`
	BillCount int    `json:"bill_count"`

	CreatedAt time.Time `json:"created_at"`
}
