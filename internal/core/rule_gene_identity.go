package core

import (
	"context"
	"fmt"

	"slimelab/pkg/domain"
)

// NewGeneIdentityRule blocks rosters in which two slimes carry a gene with the
// same identifier. Inherited genes are always copies, so a shared ID means a
// gene value leaked between creatures.
func NewGeneIdentityRule() domain.Rule {
	return geneIdentityRule{}
}

type geneIdentityRule struct{}

func (geneIdentityRule) Name() string { return "gene_identity" }

func (r geneIdentityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	owner := make(map[string]string)
	for _, slime := range view.ListSlimes() {
		for _, gene := range slime.Genes() {
			prev, seen := owner[gene.ID()]
			if seen && prev != slime.ID() {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     r.Name(),
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("gene %s (%s) shared by slimes %s and %s", gene.ID(), gene.Name(), prev, slime.ID()),
					Entity:   domain.EntitySlime,
					EntityID: slime.ID(),
				})
				continue
			}
			owner[gene.ID()] = slime.ID()
		}
	}
	return res, nil
}
