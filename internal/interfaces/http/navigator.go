package http

import "github.com/garyjia/billed/internal/application/port"

// redirectNavigator records the last requested route; handlers answer it
// with a 303 redirect
type redirectNavigator struct {
	route string
}

func (n *redirectNavigator) Navigate(route string) {
	n.route = route
}

// Route returns the recorded route, "" when navigation was not requested
func (n *redirectNavigator) Route() string {
	return n.route
}

var _ port.Navigator = (*redirectNavigator)(nil)
