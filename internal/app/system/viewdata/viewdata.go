// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/takimhub/takimhub/internal/app/system/auth"
)

// BaseVM contains common fields for all view models. Embed this struct
// in feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
type BaseVM struct {
	// User context (from auth middleware)
	IsLoggedIn bool
	UserName   string
	AvatarURL  string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string
}

// NewBaseVM creates a populated BaseVM for a page. backDefault is used
// when the request carries no usable return URL.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
	}
	if u, ok := auth.CurrentUser(r); ok && u != nil {
		vm.IsLoggedIn = true
		vm.UserName = u.Name
		vm.AvatarURL = u.AvatarURL
	}
	return vm
}
