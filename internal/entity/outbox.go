package entity

import "database/sql"

type OutboxEvent struct {
	SnowFlakeBase

	Type        string `gorm:"size:64"`
	Data        []byte
	DeliveredAt sql.NullTime `gorm:"index"`
	Attempts    int
}
