package term

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FabianRolfMatthiasNoll/GameBoyCore/internal/emu"
)

// frameInterval is one DMG frame: 70224 cycles at 4.194304 MHz.
const frameInterval = time.Second * 70224 / 4194304

const keyHold = 150 * time.Millisecond

// errQuit ends the group when the user asks to leave.
var errQuit = errors.New("quit")

// Run drives s until ctx is cancelled, the user presses q, or the machine
// fails. in should return promptly with no data so cancellation is noticed.
func Run(ctx context.Context, s *emu.Shared, in io.Reader, out io.Writer) error {
	g, ctx := errgroup.WithContext(ctx)
	h := newHolds(keyHold)

	g.Go(func() error {
		return readInput(ctx, s, h, in)
	})
	g.Go(func() error {
		return renderLoop(ctx, s, h, out)
	})

	err := g.Wait()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func readInput(ctx context.Context, s *emu.Shared, h *holds, in io.Reader) error {
	buf := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := in.Read(buf)
		p := buf[:n]
		for len(p) > 0 {
			used, act, key := decode(p)
			p = p[used:]
			switch act {
			case ActionQuit:
				return errQuit
			case ActionKey:
				if h.press(key, time.Now()) {
					s.KeyDown(key)
				}
			}
		}
		if errors.Is(err, io.EOF) {
			// input closed; keep rendering until cancelled
			<-ctx.Done()
			return ctx.Err()
		}
		if err != nil {
			return fmt.Errorf("term: read input: %w", err)
		}
	}
}

func renderLoop(ctx context.Context, s *emu.Shared, h *holds, out io.Writer) error {
	var r Renderer
	var img []byte
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	frames := 0
	start := time.Now()
	status := ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			for _, k := range h.expired(now) {
				s.KeyUp(k)
			}
			if err := s.Frame(); err != nil {
				return err
			}
			frames++
			if frames%60 == 0 {
				status = fmt.Sprintf("%.1f fps  q quits", float64(frames)/time.Since(start).Seconds())
			}
			img = s.Image(img)
			if err := r.Render(out, img, status); err != nil {
				return fmt.Errorf("term: render: %w", err)
			}
		}
	}
}
