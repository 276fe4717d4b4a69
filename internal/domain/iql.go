package domain

type IQLResult struct {
	Status               string
	Query                string
	Fields               map[string]any
	ExecutionTimeMS      float64
	Errors               []string
	ConstraintsSatisfied bool
}

func (r IQLResult) OK() bool {
	return r.Status != "error" && len(r.Errors) == 0
}

type IQLExample struct {
	Name        string
	Query       string
	Description string
}
