package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
)

// ChartType is how a chart draws its series.
type ChartType string

const (
	ChartBar      ChartType = "bar"
	ChartLine     ChartType = "line"
	ChartPie      ChartType = "pie"
	ChartDoughnut ChartType = "doughnut"
)

// ChartMode selects which categories a chart aggregates.
type ChartMode string

const (
	ModeAllCategories      ChartMode = "allCategories"
	ModeSelectedCategories ChartMode = "selectedCategories"
)

const (
	defaultChartTitle = "Chart"
	boardChartTitle   = "Analytics"
)

var (
	// ErrChartNotFound is returned for an unknown chart id.
	ErrChartNotFound = errors.New("chart not found")
	// ErrNoCategories is returned when a selected-categories chart has none.
	ErrNoCategories = errors.New("selected categories chart needs at least one category")
)

// ChartConfig describes one chart on the board.
type ChartConfig struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Type       ChartType `json:"type"`
	Mode       ChartMode `json:"mode"`
	Categories []string  `json:"categories"`
}

// ChartPatch changes the non-nil fields of a chart.
type ChartPatch struct {
	Title      *string
	Type       *ChartType
	Mode       *ChartMode
	Categories *[]string
}

func validType(t ChartType) bool {
	switch t {
	case ChartBar, ChartLine, ChartPie, ChartDoughnut:
		return true
	}
	return false
}

func validMode(m ChartMode) bool {
	return m == ModeAllCategories || m == ModeSelectedCategories
}

// ChartBoard is the ordered list of charts a viewer has configured.
type ChartBoard struct {
	mu     sync.RWMutex
	charts []ChartConfig
}

// NewChartBoard returns a board with one chart over all categories.
func NewChartBoard(defaultType ChartType) *ChartBoard {
	if !validType(defaultType) {
		defaultType = ChartBar
	}
	return &ChartBoard{charts: []ChartConfig{{
		ID:         uuid.NewString(),
		Title:      boardChartTitle,
		Type:       defaultType,
		Mode:       ModeAllCategories,
		Categories: []string{},
	}}}
}

// Charts returns a copy of the board.
func (b *ChartBoard) Charts() []ChartConfig {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]ChartConfig, len(b.charts))
	for i, c := range b.charts {
		out[i] = c.clone()
	}
	return out
}

// Add appends a chart and returns it with its assigned id.
func (b *ChartBoard) Add(cfg ChartConfig) (ChartConfig, error) {
	if strings.TrimSpace(cfg.Title) == "" {
		cfg.Title = defaultChartTitle
	}
	if cfg.Type == "" {
		cfg.Type = ChartBar
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeAllCategories
	}
	if !validType(cfg.Type) {
		return ChartConfig{}, fmt.Errorf("unknown chart type %q", cfg.Type)
	}
	if !validMode(cfg.Mode) {
		return ChartConfig{}, fmt.Errorf("unknown chart mode %q", cfg.Mode)
	}
	if cfg.Mode == ModeSelectedCategories {
		if len(cfg.Categories) == 0 {
			return ChartConfig{}, ErrNoCategories
		}
		cfg.Categories = append([]string(nil), cfg.Categories...)
	} else {
		cfg.Categories = []string{}
	}
	cfg.ID = uuid.NewString()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.charts = append(b.charts, cfg)
	return cfg.clone(), nil
}

// Update merges patch into the chart with id.
func (b *ChartBoard) Update(id string, patch ChartPatch) (ChartConfig, error) {
	if patch.Type != nil && !validType(*patch.Type) {
		return ChartConfig{}, fmt.Errorf("unknown chart type %q", *patch.Type)
	}
	if patch.Mode != nil && !validMode(*patch.Mode) {
		return ChartConfig{}, fmt.Errorf("unknown chart mode %q", *patch.Mode)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.charts {
		if b.charts[i].ID != id {
			continue
		}
		c := b.charts[i].clone()
		if patch.Title != nil {
			c.Title = *patch.Title
		}
		if patch.Type != nil {
			c.Type = *patch.Type
		}
		if patch.Mode != nil {
			c.Mode = *patch.Mode
		}
		if patch.Categories != nil {
			c.Categories = append([]string{}, (*patch.Categories)...)
		}
		b.charts[i] = c
		return c.clone(), nil
	}
	return ChartConfig{}, ErrChartNotFound
}

// Remove deletes the chart with id.
func (b *ChartBoard) Remove(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.charts {
		if b.charts[i].ID == id {
			b.charts = append(b.charts[:i:i], b.charts[i+1:]...)
			return nil
		}
	}
	return ErrChartNotFound
}

// Series aggregates items for cfg. A selected-categories chart whose list is
// empty shows every category.
func Series(cfg ChartConfig, items []item.Item) []CategoryTotal {
	if cfg.Mode == ModeSelectedCategories {
		return CategoryTotals(items, cfg.Categories)
	}
	return CategoryTotals(items, nil)
}

func (c ChartConfig) clone() ChartConfig {
	c.Categories = append([]string{}, c.Categories...)
	return c
}
