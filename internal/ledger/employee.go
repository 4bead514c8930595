package ledger

// Employee is a staff member who can approve loans and serve customers.
type Employee struct {
	ID       int
	Name     string
	Phone    string
	Username string
	password string
}

func (e *Employee) CheckPassword(password string) bool {
	return e.password == password
}

func (e *Employee) setPassword(password string) {
	e.password = password
}
