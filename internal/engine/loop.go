package engine

import (
	"context"
	"errors"
	"io"

	"github.com/lthms/reel/internal/feedback"
)

// Presenter is the interactive surface driven by Run.
type Presenter interface {
	// Present shows one pick.
	Present(p Pick) error
	// ReadAnswer blocks for one line of input until ctx is done. io.EOF
	// ends the session.
	ReadAnswer(ctx context.Context) (string, error)
	// Invalid reports rejected input before the next ReadAnswer.
	Invalid(input string)
	// Saved confirms a recorded rating.
	Saved(r feedback.Rating)
	// Exhausted reports that nothing is left to recommend.
	Exhausted()
}

// Run drives the session until the user quits, input ends, ctx is
// cancelled, or the candidates are exhausted. Only a failure to present or
// to persist a rating is returned as an error.
func Run(ctx context.Context, s *Session, ui Presenter) error {
	for {
		if ctx.Err() != nil {
			s.Quit()
			return nil
		}

		pick, err := s.Next(ctx)
		if errors.Is(err, ErrExhausted) {
			ui.Exhausted()
			return nil
		}
		if err != nil {
			return err
		}

		if err := ui.Present(pick); err != nil {
			return err
		}

		done, err := answer(ctx, s, ui)
		if err != nil || done {
			return err
		}
	}
}

// answer reads until the presented pick is rated or the session ends.
func answer(ctx context.Context, s *Session, ui Presenter) (done bool, err error) {
	for {
		line, err := ui.ReadAnswer(ctx)
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			s.Quit()
			return true, nil
		}
		if err != nil {
			return true, err
		}

		rating, err := s.Rate(line)
		switch {
		case errors.Is(err, ErrQuit):
			return true, nil
		case errors.Is(err, ErrInvalidInput):
			ui.Invalid(line)
			continue
		case err != nil:
			return true, err
		}
		ui.Saved(rating)
		return false, nil
	}
}
