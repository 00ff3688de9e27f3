package attributes

import (
	"math"
	"regexp"
	"strings"

	"github.com/okian/hookah/internal/domain/composition"
	"github.com/okian/hookah/internal/domain/model"
)

// Taste labels.
const (
	TasteSour    = "кислый"
	TasteSweet   = "сладкий"
	TasteSpicy   = "пряный"
	TasteIcy     = "ледяной"
	TasteFruity  = "фруктовый"
	TasteDessert = "десертный"
)

// Token weight factors relative to the part's percent.
const (
	nameWeight        = 0.6
	descriptionWeight = 0.3
	minTokenWeight    = 1
)

// TasteRule maps text matching Pattern to a taste Label.
type TasteRule struct {
	Pattern *regexp.Regexp
	Label   string
}

var (
	sourPattern    = regexp.MustCompile(`кисл|sour|лимон|lime|грейпфрут`)
	sweetPattern   = regexp.MustCompile(`сладк|sweet|sugar|мед|honey`)
	spicePattern   = regexp.MustCompile(`прян|spice|ginger|имбир`)
	icyPattern     = regexp.MustCompile(`лед|ice|cold|frost|мят`)
	fruitPattern   = regexp.MustCompile(`фрукт|fruit|яблок|banana|mango|pineapple|grape|orange|pear|melon|berry`)
	dessertPattern = regexp.MustCompile(`десерт|dessert|cake|pie|cookie|choco|cream|vanilla|waffle`)
)

// DefaultTasteRules returns the built-in rules in priority order.
func DefaultTasteRules() []TasteRule {
	return []TasteRule{
		{Pattern: sourPattern, Label: TasteSour},
		{Pattern: sweetPattern, Label: TasteSweet},
		{Pattern: spicePattern, Label: TasteSpicy},
		{Pattern: icyPattern, Label: TasteIcy},
		{Pattern: fruitPattern, Label: TasteFruity},
		{Pattern: dessertPattern, Label: TasteDessert},
	}
}

// Classify returns the label of the first rule matching text, which is
// lower-cased and trimmed first. Blank text never matches.
func (d *Deriver) Classify(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return "", false
	}
	for _, r := range d.rules {
		if r.Pattern.MatchString(t) {
			return r.Label, true
		}
	}
	return "", false
}

// Taste returns the dominant taste of the mix. Every tag of every used
// flavor votes with the part's percent, every word of its name with 0.6 of
// it and every word of its description with 0.3 of it (at least 1 each).
// The label with the highest total wins; on a tie the label that scored
// first wins. It reports false when nothing matched.
func (d *Deriver) Taste(parts []model.MixPart, catalog Lookup) (string, bool) {
	if len(parts) == 0 || catalog == nil || composition.PercentSum(parts) <= 0 {
		return "", false
	}

	var t tally
	for _, p := range parts {
		w := composition.SafePercent(p.Percent)
		if w <= 0 {
			continue
		}
		fl, ok := catalog.Lookup(p.FlavorID)
		if !ok {
			continue
		}
		for _, tag := range fl.Tags {
			d.vote(&t, tag, w)
		}
		for _, tok := range Tokenize(fl.Name) {
			d.vote(&t, tok, math.Max(minTokenWeight, w*nameWeight))
		}
		for _, tok := range Tokenize(fl.Description) {
			d.vote(&t, tok, math.Max(minTokenWeight, w*descriptionWeight))
		}
	}
	return t.best()
}

// DeriveTaste is Taste over a flavor slice.
func (d *Deriver) DeriveTaste(parts []model.MixPart, flavors []model.Flavor) (string, bool) {
	if len(flavors) == 0 {
		return "", false
	}
	return d.Taste(parts, NewIndex(flavors))
}

func (d *Deriver) vote(t *tally, text string, w float64) {
	if label, ok := d.Classify(text); ok {
		t.add(label, w)
	}
}

// Tokenize lower-cases s and splits it into runs of Latin letters,
// Russian letters а-я and digits. Everything else separates words.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	return ('a' <= r && r <= 'z') || ('а' <= r && r <= 'я') || ('0' <= r && r <= '9')
}

// tally accumulates label scores and remembers the order labels first scored in.
type tally struct {
	order  []string
	scores map[string]float64
}

func (t *tally) add(label string, w float64) {
	if t.scores == nil {
		t.scores = make(map[string]float64)
	}
	if _, ok := t.scores[label]; !ok {
		t.order = append(t.order, label)
	}
	t.scores[label] += w
}

func (t *tally) best() (string, bool) {
	if len(t.order) == 0 {
		return "", false
	}
	best := t.order[0]
	for _, label := range t.order[1:] {
		if t.scores[label] > t.scores[best] {
			best = label
		}
	}
	return best, true
}
