// Package presenter decides what image and text the host shows for the segments the window reports.
//
// Two image slots alternate: the current one is on screen while the background one decodes the next
// image. All methods run on the session's owner goroutine; decodes that run elsewhere report back
// through Options.Post.
package presenter

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/log"
	"github.com/storyplay/storyplay/narrative"
	"github.com/storyplay/storyplay/player"
	"github.com/storyplay/storyplay/timeline"
	"golang.org/x/sync/semaphore"
)

// Surface is where the host draws. Calls arrive on the owner goroutine.
type Surface interface {
	ShowImage(bitmap *player.Bitmap, crossfade bool)
	ShowAudioIcon()
	ClearImage()
	ShowText(text string, hasImage bool)
	ClearText()
}

// Options configure a Presenter.
type Options struct {
	Decoder player.ImageDecoder
	Surface Surface
	Size    player.Size

	// Post runs fn on the owner goroutine. It returns false once the owner has stopped.
	Post func(fn func()) bool

	// Workers bounds concurrent background decodes.
	Workers int64

	// UpgradeDelay is how long a downscaled image stays before its full decode starts.
	UpgradeDelay time.Duration

	// OnDropped reports image or text segments that could not be loaded.
	OnDropped func(seg timeline.Segment, err error)

	Log *logrus.Entry
}

// Frame is what the window reports for one instant.
type Frame struct {
	Active   []timeline.Segment
	Upcoming []timeline.Segment

	// AudioActive shows the audio icon when no image is active.
	AudioActive bool

	// KeepPrevious keeps the last image when the image due now was dropped.
	KeepPrevious bool

	// Jumped marks a discontinuity such as a seek: the image due now is loaded synchronously.
	Jumped bool
}

type display int

const (
	blank display = iota
	showingImage
	showingIcon
)

type shown struct {
	segment timeline.Segment
	bitmap  *player.Bitmap
}

type background struct {
	segment timeline.Segment
	bitmap  *player.Bitmap
	token   uint64
	cancel  context.CancelFunc
}

// Presenter is not safe for concurrent use.
type Presenter struct {
	opts Options
	sem  *semaphore.Weighted

	display display
	current mo.Option[shown]
	bg      mo.Option[background]

	upgradeToken  uint64
	upgradeCancel context.CancelFunc

	text         mo.Option[timeline.Segment]
	textHasImage bool

	token  uint64
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Presenter.
func New(opts Options) *Presenter {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Post == nil {
		opts.Post = func(fn func()) bool {
			fn()
			return true
		}
	}
	if opts.Log == nil {
		opts.Log = log.WithSession("")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Presenter{
		opts:   opts,
		sem:    semaphore.NewWeighted(opts.Workers),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Showing returns the image segment on screen.
func (p *Presenter) Showing() (timeline.Segment, bool) {
	s, ok := p.current.Get()
	return s.segment, ok
}

// Preloading returns the image segment held in the background slot and whether it is decoded.
func (p *Presenter) Preloading() (timeline.Segment, bool, bool) {
	bg, ok := p.bg.Get()
	return bg.segment, bg.bitmap != nil, ok
}

// Update applies one window classification. Text is handled last because its layout depends on
// whether an image is showing.
func (p *Presenter) Update(f Frame) {
	images := lo.Filter(f.Active, func(s timeline.Segment, _ int) bool {
		return s.Type == narrative.Image
	})

	if len(images) > 0 {
		// only the first image of an instant is shown
		p.showImage(images[0], f.Jumped)
	} else {
		p.showNoImage(f)
	}

	p.preloadNext(f.Upcoming)
	p.applyText(f.Active)
}

func (p *Presenter) showImage(seg timeline.Segment, jumped bool) {
	if cur, ok := p.current.Get(); ok && cur.segment.Key() == seg.Key() && p.display == showingImage {
		return
	}

	if bg, ok := p.bg.Get(); ok && !jumped && bg.segment.Key() == seg.Key() && bg.bitmap != nil {
		p.bg = mo.None[background]()
		p.cancelUpgrade()
		p.present(seg, bg.bitmap, true)
		return
	}

	// anything in flight for this segment is superseded by the synchronous decode
	p.cancelBackground()
	p.cancelUpgrade()

	first := jumped || p.display != showingImage
	mode := player.Fit
	if !first {
		mode = player.Downscale
	}

	bitmap, err := p.opts.Decoder.DecodeImage(p.ctx, seg.Path, p.opts.Size, mode)
	if err != nil {
		if p.ctx.Err() == nil {
			p.drop(seg, err)
		}
		return
	}

	p.present(seg, bitmap, !first)
	if mode == player.Downscale {
		p.scheduleUpgrade(seg)
	}
}

func (p *Presenter) present(seg timeline.Segment, bitmap *player.Bitmap, crossfade bool) {
	p.current = mo.Some(shown{segment: seg, bitmap: bitmap})
	p.display = showingImage
	p.opts.Surface.ShowImage(bitmap, crossfade)
}

func (p *Presenter) showNoImage(f Frame) {
	switch {
	case f.KeepPrevious && p.display == showingImage:
		return
	case f.AudioActive:
		if p.display != showingIcon {
			p.cancelUpgrade()
			p.current = mo.None[shown]()
			p.display = showingIcon
			p.opts.Surface.ShowAudioIcon()
		}
	default:
		if p.display != blank {
			p.cancelUpgrade()
			p.current = mo.None[shown]()
			p.display = blank
			p.opts.Surface.ClearImage()
		}
	}
}

func (p *Presenter) drop(seg timeline.Segment, err error) {
	p.opts.Log.Warnf("dropping %s: %v", seg, err)
	if p.opts.OnDropped != nil {
		p.opts.OnDropped(seg, err)
	}
}

// preloadNext decodes the first upcoming image into the background slot.
func (p *Presenter) preloadNext(upcoming []timeline.Segment) {
	next, ok := lo.Find(upcoming, func(s timeline.Segment) bool {
		return s.Type == narrative.Image
	})
	if !ok {
		return
	}
	if cur, ok := p.current.Get(); ok && cur.segment.Key() == next.Key() {
		return
	}
	if bg, ok := p.bg.Get(); ok && bg.segment.Key() == next.Key() {
		return
	}

	p.cancelBackground()

	ctx, cancel := context.WithCancel(p.ctx)
	p.token++
	token := p.token
	p.bg = mo.Some(background{segment: next, token: token, cancel: cancel})

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		bitmap, err := p.decode(ctx, next.Path, player.Fit)
		if ctx.Err() != nil {
			return
		}
		p.opts.Post(func() {
			p.onPreloaded(token, next, bitmap, err)
		})
	}()
}

// decode runs off the owner goroutine, bounded by the worker semaphore.
func (p *Presenter) decode(ctx context.Context, path string, mode player.Mode) (*player.Bitmap, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)
	return p.opts.Decoder.DecodeImage(ctx, path, p.opts.Size, mode)
}

func (p *Presenter) onPreloaded(token uint64, seg timeline.Segment, bitmap *player.Bitmap, err error) {
	bg, ok := p.bg.Get()
	if !ok || bg.token != token {
		return
	}

	if err != nil {
		p.bg = mo.None[background]()
		p.drop(seg, err)
		return
	}

	bg.bitmap = bitmap
	p.bg = mo.Some(bg)
}

func (p *Presenter) scheduleUpgrade(seg timeline.Segment) {
	ctx, cancel := context.WithCancel(p.ctx)
	p.upgradeToken++
	token := p.upgradeToken
	p.upgradeCancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.opts.UpgradeDelay):
		}

		bitmap, err := p.decode(ctx, seg.Path, player.Fit)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.opts.Log.Debugf("upgrade %s: %v", seg.Path, err)
			return
		}
		p.opts.Post(func() {
			if p.upgradeToken != token {
				return
			}
			if cur, ok := p.current.Get(); ok && cur.segment.Key() == seg.Key() {
				p.current = mo.Some(shown{segment: seg, bitmap: bitmap})
				p.opts.Surface.ShowImage(bitmap, false)
			}
		})
	}()
}

func (p *Presenter) cancelBackground() {
	if bg, ok := p.bg.Get(); ok {
		bg.cancel()
		p.bg = mo.None[background]()
	}
}

func (p *Presenter) cancelUpgrade() {
	if p.upgradeCancel != nil {
		p.upgradeCancel()
		p.upgradeCancel = nil
		p.upgradeToken++
	}
}

func (p *Presenter) applyText(active []timeline.Segment) {
	seg, ok := lo.Find(active, func(s timeline.Segment) bool {
		return s.Type == narrative.Text
	})
	hasImage := p.display == showingImage

	if !ok {
		if p.text.IsPresent() {
			p.text = mo.None[timeline.Segment]()
			p.opts.Surface.ClearText()
		}
		return
	}

	if cur, showing := p.text.Get(); showing && cur.Key() == seg.Key() && p.textHasImage == hasImage {
		return
	}

	data, err := filesystem.API().ReadFile(seg.Path)
	if err != nil {
		p.drop(seg, err)
		if p.text.IsPresent() {
			p.text = mo.None[timeline.Segment]()
			p.opts.Surface.ClearText()
		}
		return
	}

	p.text = mo.Some(seg)
	p.textHasImage = hasImage
	p.opts.Surface.ShowText(string(data), hasImage)
}

// CancelPending abandons background decodes. Called on seeks so a stale decode never lands.
func (p *Presenter) CancelPending() {
	p.cancelBackground()
	p.cancelUpgrade()
}

// Teardown cancels everything and blanks the surface.
func (p *Presenter) Teardown() {
	p.CancelPending()
	p.current = mo.None[shown]()
	p.text = mo.None[timeline.Segment]()
	if p.display != blank {
		p.display = blank
		p.opts.Surface.ClearImage()
	}
	p.opts.Surface.ClearText()
}

// Close stops every decode. Call Wait afterwards, from a goroutine that does not serve Post.
func (p *Presenter) Close() {
	p.cancel()
	p.CancelPending()
}

// Wait blocks until background decodes have returned.
func (p *Presenter) Wait() {
	p.wg.Wait()
}
