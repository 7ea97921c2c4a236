package preview

// Target is the element of the preview a click lands on.
type Target string

const (
	TargetThumb    Target = "thumb"
	TargetImage    Target = "image"
	TargetBackdrop Target = "backdrop"
	TargetClose    Target = "close"
)

// Lightbox is the full-size image overlay of the preview. Clicking a
// thumbnail opens it; the backdrop or the close control closes it. Clicks on
// the image itself leave it open.
type Lightbox struct {
	images  []Image
	open    bool
	current int
}

func NewLightbox(images []Image) *Lightbox {
	return &Lightbox{images: images}
}

// Click applies a click on target; index is only used for thumbnails.
// Reports whether the overlay is open afterwards.
func (l *Lightbox) Click(target Target, index int) bool {
	switch target {
	case TargetThumb:
		if index >= 0 && index < len(l.images) {
			l.open = true
			l.current = index
		}
	case TargetBackdrop, TargetClose:
		l.open = false
	}
	return l.open
}

func (l *Lightbox) IsOpen() bool { return l.open }

// LightboxView is the overlay state sent with a preview: which image is
// shown, and which targets open and close it.
type LightboxView struct {
	Open    bool     `json:"open"`
	Current *Image   `json:"current,omitempty"`
	OpenOn  Target   `json:"open_on"`
	CloseOn []Target `json:"close_on"`
}

func (l *Lightbox) View() LightboxView {
	v := LightboxView{
		Open:    l.open,
		OpenOn:  TargetThumb,
		CloseOn: []Target{TargetBackdrop, TargetClose},
	}
	if img, ok := l.Current(); ok {
		v.Current = &img
	}
	return v
}

// OpenImage shows image index of v in the overlay. Reports false, leaving v
// unchanged, when there is no such image.
func (v *View) OpenImage(index int) bool {
	lb := NewLightbox(v.Images)
	if !lb.Click(TargetThumb, index) {
		return false
	}
	v.Lightbox = lb.View()
	return true
}

// Current is the image shown while open.
func (l *Lightbox) Current() (Image, bool) {
	if !l.open {
		return Image{}, false
	}
	return l.images[l.current], true
}
