package catalog

import (
	"context"
	"errors"
	"time"
)

// Admission sources.
const (
	SourceAuto   = "auto"   // admitted by the batch admission rule
	SourceManual = "manual" // admitted by an operator
)

var (
	// ErrDuplicate marks an admission attempt for an already-cataloged factor
	ErrDuplicate = errors.New("factor already in catalog")
	// ErrNotFound marks a lookup for a factor the catalog does not hold
	ErrNotFound = errors.New("factor not in catalog")
)

// Entry is one admitted factor: its identity, the horizon it passed at, and
// the metrics snapshot that justified admission.
type Entry struct {
	FactorName string             `json:"factor_name"`
	Version    string             `json:"version"`
	Evaluator  string             `json:"evaluator"`
	Horizon    int                `json:"horizon"`
	Metrics    map[string]float64 `json:"metrics"`
	Source     string             `json:"source"`
	AdmittedAt time.Time          `json:"admitted_at"`
}

// Store persists catalog entries. Put must reject a factor name that is
// already present.
type Store interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, factorName string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, factorName string) error
}
