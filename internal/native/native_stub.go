//go:build !opencv

package native

import "errors"

func load() (Library, error) {
	return nil, errors.New("binary built without the opencv tag")
}
