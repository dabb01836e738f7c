package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/yliu-xjtu/biomanager/constants"
)

// PatentFields holds the extractable fields of a patent-grant certificate.
type PatentFields struct {
	PatentNumber    string // canonical ZL form, e.g. ZL202211551727.X
	GrantNumber     string // e.g. CN116055099B
	Title           string
	Inventors       string // semicolon-joined
	Patentee        string
	ApplicationDate string
	GrantDate       string
	PatentType      string // 发明 | 实用新型 | 外观设计
}

// SoftwareFields holds the extractable fields of a software-copyright certificate.
type SoftwareFields struct {
	SoftwareName       string
	Version            string
	RegistrationNumber string // e.g. 2023SR0123456
	CopyrightHolder    string
	DevelopmentDate    string
}

// CertificateResult is the outcome of classifying and extracting one certificate file.
type CertificateResult struct {
	Kind     constants.CertificateKind
	Patent   PatentFields
	Software SoftwareFields
	Method   constants.ExtractionMethod
	RawText  string
}

// Patent is a persisted patent record.
type Patent struct {
	ID              uuid.UUID `json:"id"`
	PatentNumber    string    `json:"patent_number"`
	GrantNumber     string    `json:"grant_number,omitempty"`
	Title           string    `json:"title"`
	Inventors       string    `json:"inventors,omitempty"`
	Patentee        string    `json:"patentee,omitempty"`
	ApplicationDate string    `json:"application_date,omitempty"`
	GrantDate       string    `json:"grant_date,omitempty"`
	PatentType      string    `json:"patent_type"`
	FilePath        string    `json:"file_path"`
	CreatedAt       time.Time `json:"created_at"`
}

// Software is a persisted software-copyright record.
type Software struct {
	ID                 uuid.UUID `json:"id"`
	SoftwareName       string    `json:"software_name"`
	Version            string    `json:"version,omitempty"`
	RegistrationNumber string    `json:"registration_number"`
	CopyrightHolder    string    `json:"copyright_holder,omitempty"`
	DevelopmentDate    string    `json:"development_date,omitempty"`
	FilePath           string    `json:"file_path"`
	CreatedAt          time.Time `json:"created_at"`
}
