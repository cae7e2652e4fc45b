package services

import (
	"crossroads-gps/internal/domain"
	"fmt"
	"io"
)

const rawDataSeparator = "\n ++++++++++++++++++++++++++++++++++++++++++++++++\n\n"

// WriteRawData appends one response body to the raw data sink under a
// banner naming the intersection.
func WriteRawData(w io.Writer, x *domain.Intersection, body string) error {
	if _, err := fmt.Fprintf(w, "Data for cross roads: [ %s && %s ]\n\n%s%s", x.FirstRoad, x.SecondRoad, body, rawDataSeparator); err != nil {
		return fmt.Errorf("write raw data: %w", err)
	}
	return nil
}
