package interp

import (
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// realFmt is a common layout for a set of doubles: fixed notation with
// digits decimals, or scientific with digits mantissa decimals.
type realFmt struct {
	width  int
	digits int
	sci    bool
}

// sigParts splits x rounded to digits significant digits into the number
// of significant digits actually needed and the decimal exponent.
func sigParts(x float64, digits int) (nsig, exp int) {
	s := strconv.FormatFloat(math.Abs(x), 'e', digits-1, 64)
	mant, e, _ := strings.Cut(s, "e")
	exp, _ = strconv.Atoi(e)
	mant = strings.Replace(mant, ".", "", 1)
	mant = strings.TrimRight(mant, "0")
	return max(len(mant), 1), exp
}

// formatReal chooses the narrowest common layout for xs, preferring
// fixed notation on ties, as print does.
func formatReal(xs []float64, digits int) realFmt {
	var (
		naw, mxsl, rgt, mxns int
		minExp, maxExp       int
		neg, anyFinite       bool
	)
	for _, x := range xs {
		switch {
		case IsNA(x):
			naw = max(naw, 2)
		case math.IsNaN(x):
			naw = max(naw, 3)
		case math.IsInf(x, 1):
			naw = max(naw, 3)
		case math.IsInf(x, -1):
			naw = max(naw, 4)
		default:
			nsig, kp := 1, 0
			if x != 0 {
				nsig, kp = sigParts(x, digits)
			}
			sneg := 0
			if x < 0 {
				neg = true
				sneg = 1
			}
			left := max(kp+1, 1)
			mxsl = max(mxsl, sneg+left)
			rgt = max(rgt, nsig-kp-1)
			mxns = max(mxns, nsig)
			if !anyFinite {
				minExp, maxExp = kp, kp
			}
			minExp = min(minExp, kp)
			maxExp = max(maxExp, kp)
			anyFinite = true
		}
	}
	if !anyFinite {
		return realFmt{width: naw}
	}
	rgt = max(rgt, 0)
	fixed := mxsl
	if rgt > 0 {
		fixed += rgt + 1
	}
	expDigits := 2
	if maxExp >= 100 || minExp <= -100 {
		expDigits = 3
	}
	sci := 1 + 2 + expDigits
	if mxns > 1 {
		sci += mxns
	}
	if neg {
		sci++
	}
	if fixed <= sci {
		return realFmt{width: max(fixed, naw), digits: rgt}
	}
	return realFmt{width: max(sci, naw), digits: mxns - 1, sci: true}
}

// encodeReal renders x in layout f without padding.
func encodeReal(x float64, f realFmt) string {
	switch {
	case IsNA(x):
		return "NA"
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Inf"
	case math.IsInf(x, -1):
		return "-Inf"
	}
	if x == 0 {
		x = 0 // drop the sign of -0
	}
	if f.sci {
		return strconv.FormatFloat(x, 'e', f.digits, 64)
	}
	return strconv.FormatFloat(x, 'f', f.digits, 64)
}

// realString renders one double with digits significant digits, as
// as.character and paste do.
func realString(x float64, digits int) string {
	return encodeReal(x, formatReal([]float64{x}, digits))
}

func intString(i int32) string {
	if i == NAInteger {
		return "NA"
	}
	return strconv.Itoa(int(i))
}

func lglString(b int32) string {
	switch b {
	case NALogical:
		return "NA"
	case 0:
		return "FALSE"
	}
	return "TRUE"
}

func complexString(z complex128, digits int) string {
	if IsNAComplex(z) {
		return "NA"
	}
	re := formatReal([]float64{real(z)}, digits)
	im := formatReal([]float64{math.Abs(imag(z))}, digits)
	sign := "+"
	if imag(z) < 0 || (imag(z) == 0 && math.Signbit(imag(z))) {
		sign = "-"
	}
	return encodeReal(real(z), re) + sign + encodeReal(math.Abs(imag(z)), im) + "i"
}

// quoteString renders s as a double-quoted R string literal.
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\a':
			sb.WriteString(`\a`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\v':
			sb.WriteString(`\v`)
		case 0:
			sb.WriteString(`\0`)
		default:
			if r < 0x20 || r == 0x7f {
				sb.WriteString(`\` + strconv.FormatInt(int64(r), 8))
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// displayWidth is the terminal column width of s.
func displayWidth(s string) int { return runewidth.StringWidth(s) }

func padLeft(s string, w int) string {
	if d := w - displayWidth(s); d > 0 {
		return strings.Repeat(" ", d) + s
	}
	return s
}

func padRight(s string, w int) string {
	if d := w - displayWidth(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

// elementStrings renders every element of an atomic vector in a common
// layout. quote applies to character vectors.
func (in *Interp) elementStrings(x SEXP, digits int, quote bool) []string {
	n := in.Length(x)
	out := make([]string, n)
	switch in.Kind(x) {
	case LglSXP:
		for i, v := range in.Logical(x) {
			out[i] = lglString(v)
		}
	case IntSXP:
		for i, v := range in.Integer(x) {
			out[i] = intString(v)
		}
	case RealSXP:
		xs := in.Real(x)
		f := formatReal(xs, digits)
		for i, v := range xs {
			out[i] = encodeReal(v, f)
		}
	case CplxSXP:
		zs := in.Complex(x)
		re := make([]float64, 0, n)
		im := make([]float64, 0, n)
		for _, z := range zs {
			if !IsNAComplex(z) {
				re = append(re, real(z))
				im = append(im, math.Abs(imag(z)))
			}
		}
		fr, fi := formatReal(re, digits), formatReal(im, digits)
		for i, z := range zs {
			if IsNAComplex(z) {
				out[i] = "NA"
				continue
			}
			sign := "+"
			if imag(z) < 0 {
				sign = "-"
			}
			out[i] = encodeReal(real(z), fr) + sign + encodeReal(math.Abs(imag(z)), fi) + "i"
		}
	case StrSXP:
		for i := range n {
			switch {
			case in.IsNAStringElt(x, i) && quote:
				out[i] = "NA"
			case in.IsNAStringElt(x, i):
				out[i] = "<NA>"
			case quote:
				out[i] = quoteString(in.Str(x, i))
			default:
				out[i] = in.Str(x, i)
			}
		}
	}
	return out
}
