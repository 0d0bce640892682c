package insurance

// Observer is notified about changes of a Model
type Observer interface {
	// TableChanged is called after records were added, updated, deleted or re-loaded
	TableChanged()
	// SelectionChanged is called when current company changes
	SelectionChanged(c *Company)
	// Failed is called when an operation on the model fails
	Failed(err error)
}

// ObserverFuncs implements Observer with optional functions
type ObserverFuncs struct {
	OnTableChanged     func()
	OnSelectionChanged func(c *Company)
	OnFailed           func(err error)
}

var _ Observer = &ObserverFuncs{}

func (o *ObserverFuncs) TableChanged() {
	if o.OnTableChanged != nil {
		o.OnTableChanged()
	}
}

func (o *ObserverFuncs) SelectionChanged(c *Company) {
	if o.OnSelectionChanged != nil {
		o.OnSelectionChanged(c)
	}
}

func (o *ObserverFuncs) Failed(err error) {
	if o.OnFailed != nil {
		o.OnFailed(err)
	}
}
