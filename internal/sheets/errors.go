package sheets

import "fmt"

// DataSourceError reports that a table could not be read from the tabular store.
type DataSourceError struct {
	Table string
	Err   error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("could not read data from %s: %v", e.Table, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }
