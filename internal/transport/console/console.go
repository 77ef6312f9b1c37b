package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/relevohq/relevo/internal/service/interview"
	"github.com/relevohq/relevo/pkg/log"
)

// Service runs one interview session over stdin/stdout. It is the only
// transport this binary ships; an HTTP surface belongs to the backend.
type Service struct {
	turns          *interview.Service
	employeeID     string
	organizationID string
	language       string
	in             io.Reader
	out            io.Writer
	stop           context.CancelFunc
}

func NewService(turns *interview.Service, employeeID, organizationID, language string, stop context.CancelFunc) *Service {
	return &Service{
		turns:          turns,
		employeeID:     employeeID,
		organizationID: organizationID,
		language:       language,
		in:             os.Stdin,
		out:            os.Stdout,
		stop:           stop,
	}
}

func (s *Service) Start(ctx context.Context) error {
	// The session owns the process lifetime: when the interview ends, the
	// whole binary shuts down.
	defer s.stop()

	iv, opening, err := s.turns.StartInterview(ctx, s.employeeID, s.organizationID, s.language)
	if err != nil {
		return fmt.Errorf("failed to start interview: %w", err)
	}
	log.FromCtx(ctx).Info().Str("interview_id", iv.ID).Msg("interview session started")
	fmt.Fprintf(s.out, "agent> %s\n", opening)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(s.out, "you> ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}

			res, err := s.turns.ProcessTurn(ctx, iv.ID, line)
			if err != nil {
				log.FromCtx(ctx).Error().Err(err).Str("interview_id", iv.ID).Msg("turn failed")
				continue
			}
			fmt.Fprintf(s.out, "agent> %s\n", res.AgentText)

			if res.Decision.Finished {
				log.FromCtx(ctx).Info().
					Str("interview_id", iv.ID).
					Str("reason", string(res.Decision.Reason)).
					Msg("interview finished")
				return nil
			}
		}
	}
}

func (s *Service) Shutdown(ctx context.Context) error {
	return nil
}
