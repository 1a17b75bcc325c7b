package model

import "time"

// Vacancy is one job posting row as stored in the vacancies table.
// Text columns are nullable in the store and come back as empty strings.
type Vacancy struct {
	ID           int64
	Title        string
	Company      string
	Location     string
	Salary       string
	GeneralTitle string
	Category     string
	Level        string
	PublishedAt  time.Time
}

// VacancyColumns lists the exported attributes in CSV column order.
var VacancyColumns = []string{
	"id",
	"title",
	"company",
	"location",
	"salary",
	"general_title",
	"category",
	"level",
	"published_at",
}

// ExportResult is the outcome of a range export. Empty is a success with no file.
type ExportResult struct {
	Range    DateRange
	Rows     int
	Empty    bool
	CSV      []byte
	Filename string
}
