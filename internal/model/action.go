package model

// Action is the routing decision computed from a record's canonical inputs.
type Action string

const (
	ActionVerify             Action = "verify"
	ActionFindPerson         Action = "find_person"
	ActionFindCompanyContact Action = "find_company_contact"
	ActionSearchPerson       Action = "search_person"
	ActionSearchCompany      Action = "search_company"
	ActionCannotRoute        Action = "cannot_route"
)
