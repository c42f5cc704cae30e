package feedback

import "fmt"

// Copy appends every record persisted in src to dst, in write order, and
// returns how many were written. Re-ratings are copied too.
func Copy(dst, src Store) (int, error) {
	n := 0
	err := src.Each(func(r Record) error {
		if err := dst.Append(r); err != nil {
			return fmt.Errorf("append %s: %w", r.Link, err)
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("copy feedback: %w", err)
	}
	return n, nil
}
