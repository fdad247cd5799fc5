package pipeline

import (
	"strings"

	"github.com/justsurfingit/hiring-pipeline/internal/models"
)

// Catalog is the set of stages a job accepts. Order is kept for display, but
// any member may transition to any other member.
type Catalog struct {
	order   []string
	members map[string]struct{}
}

// NewCatalog checks that stages is non-empty and free of blanks and duplicates.
func NewCatalog(stages []string) (*Catalog, error) {
	if len(stages) == 0 {
		return nil, invalidField("stages", "must contain at least one stage")
	}
	c := &Catalog{
		order:   make([]string, 0, len(stages)),
		members: make(map[string]struct{}, len(stages)),
	}
	for _, s := range stages {
		if strings.TrimSpace(s) == "" {
			return nil, invalidField("stages", "stage names must not be blank")
		}
		if _, dup := c.members[s]; dup {
			return nil, invalidField("stages", "duplicate stage "+s)
		}
		c.members[s] = struct{}{}
		c.order = append(c.order, s)
	}
	return c, nil
}

// CatalogOf builds the catalog of a stored job. Stored jobs were validated on
// write, so a job with no stages falls back to the default set.
func CatalogOf(job *models.Job) *Catalog {
	stages := []string(job.Stages)
	if len(stages) == 0 {
		stages = models.DefaultStages
	}
	c, err := NewCatalog(stages)
	if err != nil {
		c, _ = NewCatalog(models.DefaultStages)
	}
	return c
}

func (c *Catalog) Contains(stage string) bool {
	_, ok := c.members[stage]
	return ok
}

// Initial is the stage new applications start in.
func (c *Catalog) Initial() string {
	return c.order[0]
}

func (c *Catalog) Stages() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
