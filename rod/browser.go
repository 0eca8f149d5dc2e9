package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the number of pages rendered before Chrome is
// restarted. Municipal code viewers are script heavy and Chrome never
// returns to its baseline memory use.
const DefaultMaxPages = 25

// browser owns one Chrome process and replaces it after maxPages renders.
type browser struct {
	mu       sync.Mutex
	rod      *rod.Browser
	launcher *launcher.Launcher
	pages    int
	maxPages int
}

func launchBrowser(maxPages int) (*browser, error) {
	b := &browser{maxPages: maxPages}
	if err := b.launch(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *browser) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	rb := rod.New().ControlURL(u)
	if err := rb.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	b.rod = rb
	b.launcher = l
	b.pages = 0
	return nil
}

// acquire returns the live browser, restarting it first when the page
// budget is spent. A failed restart keeps the old process.
func (b *browser) acquire() *rod.Browser {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pages >= b.maxPages {
		oldRod, oldLauncher := b.rod, b.launcher
		if err := b.launch(); err != nil {
			b.rod, b.launcher = oldRod, oldLauncher
		} else {
			_ = oldRod.Close()
			oldLauncher.Kill()
		}
	}
	b.pages++
	return b.rod
}

func (b *browser) pid() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.launcher == nil {
		return 0
	}
	return b.launcher.PID()
}

func (b *browser) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.rod != nil {
		err = b.rod.Close()
		b.rod = nil
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}
