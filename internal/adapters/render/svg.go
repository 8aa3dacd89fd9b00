// Package render draws a composed scene as a standalone SVG document.
package render

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"time"

	"github.com/okian/forest/internal/domain/scene"
)

// Tree silhouettes span this share of the width at each edge.
const treeWidthShare = 0.22

// Left-edge silhouettes in a 200x800 box; the right edge is their mirror.
var (
	leftTrees = [2]string{
		"M120 800 C80 650 140 520 90 400 C60 300 60 210 90 120 C105 75 110 40 98 0 L140 0 C135 60 150 95 160 130 C195 250 165 350 150 420 C125 555 155 670 175 800 Z",
		"M70 800 C40 680 70 560 40 470 C15 390 18 320 40 250 C55 200 55 165 48 120 C42 80 40 45 44 0 L85 0 C82 55 90 100 100 140 C125 230 115 330 100 410 C85 520 100 650 120 800 Z",
	}
	rightTrees = [2]string{
		"M80 800 C120 650 60 520 110 400 C140 300 140 210 110 120 C95 75 90 40 102 0 L60 0 C65 60 50 95 40 130 C5 250 35 350 50 420 C75 555 45 670 25 800 Z",
		"M130 800 C160 680 130 560 160 470 C185 390 182 320 160 250 C145 200 145 165 152 120 C158 80 160 45 156 0 L115 0 C118 55 110 100 100 140 C75 230 85 330 100 410 C115 520 100 650 80 800 Z",
	}
)

const lightCSS = `
    a { cursor: pointer; outline: none; }
    .light { transition: fill-opacity 650ms ease; }`

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	trees    bool
	shadows  bool
	animated bool
	pulseAt  time.Duration
}

// WithoutTrees leaves out the edge silhouettes.
func WithoutTrees() SVGOption { return func(r *svgRenderer) { r.trees = false } }

// WithoutShadows leaves out the seasonal vignettes.
func WithoutShadows() SVGOption { return func(r *svgRenderer) { r.shadows = false } }

// WithStatic renders the pulse as its first frame instead of an animation.
func WithStatic() SVGOption { return WithPulseFrame(0) }

// WithPulseFrame renders the pulse as the still frame reached after
// elapsed. A pulse that has fully faded by then is left out.
func WithPulseFrame(elapsed time.Duration) SVGOption {
	return func(r *svgRenderer) {
		r.animated = false
		r.pulseAt = max(elapsed, 0)
	}
}

// RenderSVG draws s. Lights are painted in the order given, which Compose
// already sorts back to front. The document carries no text.
func RenderSVG(s scene.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{trees: true, shadows: true, animated: true}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := extent(s.Viewport.W), extent(s.Viewport.H)

	// The element background covers letterboxing when the page scales the
	// document to a different aspect ratio.
	backdrop := scene.Palette(s.Season).CSS()
	if r.shadows && len(s.Shadows) > 0 {
		backdrop = scene.ShadowsCSS(s.Season) + "," + backdrop
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s" data-season="%s" style="background:%s">`+"\n",
		num(w), num(h), num(w), num(h), s.Season, html.EscapeString(backdrop))
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", lightCSS)

	renderDefs(&buf, s, w, h, r.shadows)
	fmt.Fprintf(&buf, `  <rect width="%s" height="%s" fill="url(#bg)"/>`+"\n", num(w), num(h))
	if r.shadows {
		for i := range s.Shadows {
			fmt.Fprintf(&buf, `  <rect width="%s" height="%s" fill="url(#shadow-%d)" pointer-events="none"/>`+"\n", num(w), num(h), i)
		}
	}
	if r.trees {
		renderTrees(&buf, w, h)
	}
	for _, l := range s.Lights {
		renderLight(&buf, l, r.animated, r.pulseAt)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, s scene.Scene, w, h float64, shadows bool) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <linearGradient id="bg" x1="0" y1="0" x2="0" y2="1"><stop offset="0" stop-color="%s"/><stop offset="1" stop-color="%s"/></linearGradient>`+"\n",
		html.EscapeString(s.Background.From), html.EscapeString(s.Background.To))
	buf.WriteString(`    <radialGradient id="halo"><stop offset="0" stop-color="#fff" stop-opacity="1"/><stop offset="1" stop-color="#fff" stop-opacity="0"/></radialGradient>` + "\n")
	if shadows {
		for i, sh := range s.Shadows {
			renderShadowDef(buf, i, sh, w, h)
		}
	}
	buf.WriteString("  </defs>\n")
}

// renderShadowDef maps an elliptical vignette onto a unit radial gradient
// stretched to the ellipse radii.
func renderShadowDef(buf *bytes.Buffer, i int, sh scene.Shadow, w, h float64) {
	cx, cy := sh.AtXPct/100*w, sh.AtYPct/100*h
	rx, ry := sh.WidthPct/100*w, sh.HeightPct/100*h
	fmt.Fprintf(buf, `    <radialGradient id="shadow-%d" gradientUnits="userSpaceOnUse" cx="0" cy="0" r="1" gradientTransform="translate(%s %s) scale(%s %s)">`,
		i, num(cx), num(cy), num(rx), num(ry))
	fmt.Fprintf(buf, `<stop offset="0" stop-color="#000" stop-opacity="%s"/><stop offset="%s" stop-color="#000" stop-opacity="0"/></radialGradient>`+"\n",
		num(sh.Alpha), num(sh.FadePct/100))
}

func renderTrees(buf *bytes.Buffer, w, h float64) {
	tw := w * treeWidthShare
	for _, side := range []struct {
		x     float64
		paths [2]string
	}{{0, leftTrees}, {w - tw, rightTrees}} {
		fmt.Fprintf(buf, `  <svg x="%s" y="0" width="%s" height="%s" viewBox="0 0 200 800" preserveAspectRatio="none" opacity="0.35" aria-hidden="true" pointer-events="none">`+"\n",
			num(side.x), num(tw), num(h))
		fmt.Fprintf(buf, `    <path d="%s" fill="black"/>`+"\n", side.paths[0])
		fmt.Fprintf(buf, `    <path d="%s" fill="black" opacity="0.7"/>`+"\n", side.paths[1])
		buf.WriteString("  </svg>\n")
	}
}

func renderLight(buf *bytes.Buffer, l scene.Light, animated bool, pulseAt time.Duration) {
	r := l.Size / 2
	fmt.Fprintf(buf, `  <a href="%s" aria-label="entry" data-id="%s" data-z="%d" data-bx="%s" data-by="%s">`+"\n",
		html.EscapeString(l.Href), html.EscapeString(l.ID), l.Z, num(l.BaseX), num(l.BaseY))
	fmt.Fprintf(buf, `    <circle cx="%s" cy="%s" r="%s" fill="url(#halo)" opacity="%s"/>`+"\n",
		num(l.X), num(l.Y), num(r+l.Glow), num(l.GlowAlpha))
	fmt.Fprintf(buf, `    <circle class="light" cx="%s" cy="%s" r="%s" fill="#fff" fill-opacity="%s"/>`+"\n",
		num(l.X), num(l.Y), num(r), num(l.Opacity))
	if l.Pulse != nil {
		renderPulse(buf, l, r, animated, pulseAt)
	}
	buf.WriteString("  </a>\n")
}

func renderPulse(buf *bytes.Buffer, l scene.Light, r float64, animated bool, at time.Duration) {
	p := l.Pulse
	if !animated {
		if p.Done(at) {
			return
		}
		intensity, scale := p.At(at)
		fmt.Fprintf(buf, `    <circle class="pulse" cx="%s" cy="%s" r="%s" fill="#fff" fill-opacity="%s"/>`+"\n",
			num(l.X), num(l.Y), num(r*scale), num(p.Opacity*intensity))
		fmt.Fprintf(buf, `    <circle class="pulse-glow" cx="%s" cy="%s" r="%s" fill="url(#halo)" opacity="%s"/>`+"\n",
			num(l.X), num(l.Y), num(r+p.GlowPx), num(p.GlowAlpha*intensity))
		return
	}
	dur := fmt.Sprintf("%dms", p.DurationMs)
	fmt.Fprintf(buf, `    <circle class="pulse" cx="%s" cy="%s" r="%s" fill="#fff" fill-opacity="%s">`,
		num(l.X), num(l.Y), num(r), num(p.Opacity))
	fmt.Fprintf(buf, `<animate attributeName="r" from="%s" to="%s" dur="%s" calcMode="spline" keySplines="0 0 0.58 1" fill="freeze"/>`,
		num(r), num(r*p.ScaleTo), dur)
	fmt.Fprintf(buf, `<animate attributeName="opacity" from="1" to="0" dur="%s" calcMode="spline" keySplines="0 0 0.58 1" fill="freeze"/></circle>`+"\n", dur)
	fmt.Fprintf(buf, `    <circle class="pulse-glow" cx="%s" cy="%s" r="%s" fill="url(#halo)" opacity="%s">`,
		num(l.X), num(l.Y), num(r+p.GlowPx), num(p.GlowAlpha))
	fmt.Fprintf(buf, `<animate attributeName="opacity" from="%s" to="0" dur="%dms" fill="freeze"/></circle>`+"\n",
		num(p.GlowAlpha), p.DurationMs+p.SettleMs)
}

// extent clamps a viewport axis to a drawable size.
func extent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 1 {
		return 1
	}
	return v
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s := fmt.Sprintf("%.2f", v)
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
