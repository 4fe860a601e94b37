package core

import "slimelab/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	RulesEngine        = domain.RulesEngine
	Rule               = domain.Rule
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
	Slime              = domain.Slime
	ContainmentUnit    = domain.ContainmentUnit
	Expedition         = domain.Expedition
	Zone               = domain.Zone
)

const (
	EntitySlime           = domain.EntitySlime
	EntityContainmentUnit = domain.EntityContainmentUnit
	EntityExpedition      = domain.EntityExpedition
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
