package port

// Routes of the employee pages
const (
	RouteBills   = "/employee/bills"
	RouteNewBill = "/employee/bill/new"
)

// Navigator replaces the current view with the view of a route
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(route string)

// Navigate calls f(route)
func (f NavigatorFunc) Navigate(route string) {
	f(route)
}
