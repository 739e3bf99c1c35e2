package models

type Team struct {
	ID   int64
	Name string
}

type Champion struct {
	ID     int64
	TeamID int64
	Name   string
	Points int64
}
