// Package catalog persists the archive → fund → description → case hierarchy
// and the FamilySearch source items reconciled into it.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Archive is a top-level state archive. Archives are reference data: the
// importer and structure operations never create them.
type Archive struct {
	ID    uuid.UUID
	Code  string
	Title string
}

// Fund is an archival fond under an archive. Natural key (code, archive_id).
type Fund struct {
	ID        uuid.UUID
	ArchiveID uuid.UUID
	Code      string
	Title     string
}

// Description is an inventory under a fund. Natural key (code, fund_id).
type Description struct {
	ID     uuid.UUID
	FundID uuid.UUID
	Code   string
	Title  string
}

// Case is a single archival unit under a description. Natural key
// (code, description_id). FullCode is the "archive/fund/description/case"
// path used by the public site.
type Case struct {
	ID            uuid.UUID
	DescriptionID uuid.UUID
	Code          string
	Title         string
	FullCode      string
}

// SourceItem is one FamilySearch record waiting to be reconciled, joined with
// its project's archive. ArchiveID is nil when the project has no archive.
type SourceItem struct {
	ID                uuid.UUID
	ProjectID         uuid.UUID
	ArchiveID         *uuid.UUID
	ArchiveCode       string
	DGS               string
	Volume            string
	Volumes           string
	ArchivalReference string
	Title             string
	DateRange         string
	CatalogedAt       *time.Time
}
