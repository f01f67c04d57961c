package session

// Navigator abstracts the navigation surface the session store signals into.
// A browser shell maps Navigate to a location change; the CLI prints the
// target; tests record it.
type Navigator interface {
	// Current returns the path the user is currently on.
	Current() string

	// Navigate moves the user to the given path, replacing the current
	// history entry.
	Navigate(path string)
}

// NavigatorFuncs adapts two functions into a Navigator.
type NavigatorFuncs struct {
	CurrentFunc  func() string
	NavigateFunc func(path string)
}

func (n NavigatorFuncs) Current() string {
	if n.CurrentFunc == nil {
		return ""
	}
	return n.CurrentFunc()
}

func (n NavigatorFuncs) Navigate(path string) {
	if n.NavigateFunc != nil {
		n.NavigateFunc(path)
	}
}
