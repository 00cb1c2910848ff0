package provider

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserSettings locates the web chat UI the browser provider drives and
// the selectors that identify its controls. All fields come from
// configuration; there is no sensible universal default for a third-party
// page layout.
type BrowserSettings struct {
	// URL of the chat page.
	URL string

	// ChromePath overrides Chrome discovery. Empty means search PATH.
	ChromePath string

	// PromptSelector matches the prompt input element.
	PromptSelector string

	// SendSelector matches the submit control.
	SendSelector string

	// ResponseSelector matches the container whose text is the agent's
	// reply.
	ResponseSelector string

	// BusySelector matches an element present only while the page is still
	// generating. Its disappearance marks completion.
	BusySelector string

	// PollInterval is how often the response container is sampled.
	PollInterval time.Duration
}

// Browser automates a web chat UI through headless Chrome. The page has no
// tool access to the local filesystem, so the read-only and no-tools
// contracts hold by construction.
type Browser struct {
	settings BrowserSettings
}

// chromeCandidates are executable names probed when no explicit path is
// configured.
var chromeCandidates = []string{"google-chrome", "chromium", "chromium-browser", "chrome"}

// NewBrowser creates the browser-automated provider.
func NewBrowser(settings BrowserSettings) *Browser {
	if settings.PollInterval <= 0 {
		settings.PollInterval = 500 * time.Millisecond
	}
	return &Browser{settings: settings}
}

func (b *Browser) Name() string {
	return "browser"
}

// ExecuteQuery opens the configured page, submits the prompt, and polls the
// response container, emitting an assistant message per observed text delta
// and a terminal result once the busy indicator clears and the text settles.
func (b *Browser) ExecuteQuery(ctx context.Context, opts ExecuteOptions, msgs chan<- Message) error {
	if b.settings.URL == "" {
		return NewError(KindExecutionError, b.Name(), "browser provider is not configured (missing url)")
	}

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if b.settings.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(b.settings.ChromePath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(b.settings.URL),
		chromedp.WaitVisible(b.settings.PromptSelector, chromedp.ByQuery),
		chromedp.SendKeys(b.settings.PromptSelector, opts.Prompt, chromedp.ByQuery),
		chromedp.Click(b.settings.SendSelector, chromedp.ByQuery),
	)
	if err != nil {
		return b.classify(ctx, fmt.Errorf("submitting prompt: %w", err))
	}

	return b.pollResponse(ctx, browserCtx, msgs)
}

// pollResponse samples the response container until the page finishes
// generating. Completion is the busy indicator's absence plus a stable text
// sample across two consecutive polls.
func (b *Browser) pollResponse(ctx context.Context, browserCtx context.Context, msgs chan<- Message) error {
	ticker := time.NewTicker(b.settings.PollInterval)
	defer ticker.Stop()

	var previous string
	var stable bool
	for {
		select {
		case <-ctx.Done():
			return WrapError(KindCancelled, b.Name(), ctx.Err())
		case <-ticker.C:
		}

		var text string
		var busy bool
		actions := []chromedp.Action{
			chromedp.Text(b.settings.ResponseSelector, &text, chromedp.ByQuery, chromedp.AtLeast(0)),
		}
		if b.settings.BusySelector != "" {
			actions = append(actions, chromedp.Evaluate(
				fmt.Sprintf("document.querySelector(%q) !== null", b.settings.BusySelector), &busy))
		}
		if err := chromedp.Run(browserCtx, actions...); err != nil {
			return b.classify(ctx, fmt.Errorf("polling response: %w", err))
		}

		if delta := strings.TrimPrefix(text, previous); delta != "" && strings.HasPrefix(text, previous) {
			select {
			case msgs <- AssistantText(delta):
			case <-ctx.Done():
				return WrapError(KindCancelled, b.Name(), ctx.Err())
			}
		}

		done := !busy && text != "" && text == previous
		previous = text

		if done {
			if !stable {
				// Require one more unchanged sample so a paused renderer
				// isn't mistaken for completion.
				stable = true
				continue
			}
			select {
			case msgs <- SuccessResult(text):
			case <-ctx.Done():
				return WrapError(KindCancelled, b.Name(), ctx.Err())
			}
			return nil
		}
		stable = false
	}
}

// CheckInstallation probes for a usable Chrome binary without launching it.
func (b *Browser) CheckInstallation(ctx context.Context) InstallationStatus {
	status := InstallationStatus{}

	path := b.settings.ChromePath
	if path == "" {
		for _, candidate := range chromeCandidates {
			if found, err := exec.LookPath(candidate); err == nil {
				path = found
				break
			}
		}
	} else if _, err := exec.LookPath(path); err != nil {
		path = ""
	}
	if path == "" {
		status.Error = "no Chrome or Chromium executable found (install one or set providers.browser.chrome_path)"
		return status
	}
	status.Installed = true
	// Driving a logged-in page is the page's own concern; the probe can
	// only vouch for the browser being present.
	status.Authenticated = true

	versionCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if out, err := exec.CommandContext(versionCtx, path, "--version").Output(); err == nil {
		status.Version = strings.TrimSpace(string(out))
	}
	return status
}

func (b *Browser) classify(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return WrapError(KindCancelled, b.Name(), ctx.Err())
	}
	if errors.Is(err, exec.ErrNotFound) || strings.Contains(err.Error(), "executable file not found") {
		return &Error{
			Kind:     KindNotInstalled,
			Provider: b.Name(),
			Message:  "could not launch Chrome (install it or set providers.browser.chrome_path)",
			Err:      err,
		}
	}
	return WrapError(KindExecutionError, b.Name(), err)
}
