package fortune

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf16"
)

var (
	ErrInvalidBirthDate    = errors.New("invalid birth date")
	ErrInvalidGender       = errors.New("gender must be male or female")
	ErrInvalidCalendarType = errors.New("calendar type must be SOLAR or LUNAR")
)

type Element string

const (
	Wood  Element = "목"
	Fire  Element = "화"
	Earth Element = "토"
	Metal Element = "금"
	Water Element = "수"
)

// Stem is one of the ten heavenly stems and the element it belongs to.
type Stem struct {
	Symbol  string  `json:"symbol"`
	Element Element `json:"element"`
}

var stems = [10]Stem{
	{"갑", Wood}, {"을", Wood},
	{"병", Fire}, {"정", Fire},
	{"무", Earth}, {"기", Earth},
	{"경", Metal}, {"신", Metal},
	{"임", Water}, {"계", Water},
}

// Indexed by time.Weekday.
var weekdayElements = [7]Element{Fire, Water, Fire, Water, Wood, Metal, Earth}

var weekdayLabels = [7]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case Male, Female:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGender, s)
	}
}

// CalendarType is echoed into the result metadata. Lunar birth dates are
// scored exactly like solar ones.
type CalendarType string

const (
	Solar CalendarType = "SOLAR"
	Lunar CalendarType = "LUNAR"
)

func ParseCalendarType(s string) (CalendarType, error) {
	switch c := CalendarType(strings.ToUpper(strings.TrimSpace(s))); c {
	case Solar, Lunar:
		return c, nil
	case "":
		return Solar, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCalendarType, s)
	}
}

const (
	baseScore         = 52
	sameElementBonus  = 16
	otherElementBonus = 4
	femaleBonus       = 3
	weekendBonus      = 6
)

// StemFromBirthDate maps (year + month + day) mod 10 onto the stems.
func StemFromBirthDate(birth time.Time) Stem {
	y, m, d := birth.Date()
	return stems[(y+int(m)+d)%10]
}

func WeekdayElement(day time.Weekday) Element {
	return weekdayElements[day]
}

func RelationScore(stem Stem, element Element, gender Gender) int {
	score := baseScore
	if stem.Element == element {
		score += sameElementBonus
	} else {
		score += otherElementBonus
	}
	if gender == Female {
		score += femaleBonus
	}
	return score
}

func WeekdayBonus(day time.Weekday) int {
	if day == time.Saturday || day == time.Sunday {
		return weekendBonus
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Hash is the 31-multiplier rolling hash over UTF-16 code units with
// 32-bit wraparound.
func Hash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	return h
}

// PickIndex returns abs(Hash(seed)) mod n.
func PickIndex(seed string, n int) int {
	if n <= 0 {
		return 0
	}
	h := int64(Hash(seed))
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}

var birthDateLayouts = []string{
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"20060102",
	time.RFC3339,
}

// ParseBirthDate accepts ISO dates and a few common separators.
func ParseBirthDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidBirthDate, s)
}

// Meta echoes the inputs and intermediate values behind a LuckResult.
type Meta struct {
	Date         string       `json:"date"`
	ISODate      string       `json:"iso_date"`
	Weekday      string       `json:"weekday"`
	Element      Element      `json:"element"`
	Stem         string       `json:"stem"`
	StemElement  Element      `json:"stem_element"`
	BirthDate    string       `json:"birth_date"`
	Gender       Gender       `json:"gender"`
	CalendarType CalendarType `json:"calendar_type"`
}

type LuckResult struct {
	Score   int     `json:"score"`
	Grade   Grade   `json:"grade"`
	Message string  `json:"message"`
	Idiom   *string `json:"idiom"`
	Meta    Meta    `json:"meta"`
}

// DefaultLocation is the zone "today" is read in when no clock is injected.
var DefaultLocation = time.FixedZone("KST", 9*60*60)

// Calculator scores a birth date against a day. It holds no mutable state
// and is safe for concurrent use.
type Calculator struct {
	dataset Dataset
	grades  GradeTable
	now     func() time.Time
	loc     *time.Location
}

type Option func(*Calculator)

func WithDataset(d Dataset) Option {
	return func(c *Calculator) { c.dataset = d }
}

func WithGradeTable(t GradeTable) Option {
	return func(c *Calculator) { c.grades = t }
}

// WithToday pins "today" to a fixed date.
func WithToday(day time.Time) Option {
	return func(c *Calculator) {
		c.now = func() time.Time { return day }
		c.loc = day.Location()
	}
}

func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) { c.loc = loc }
}

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		dataset: DefaultDataset(),
		grades:  DefaultGradeTable(),
		now:     time.Now,
		loc:     DefaultLocation,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of c with opts applied.
func (c *Calculator) With(opts ...Option) *Calculator {
	cp := *c
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

func (c *Calculator) Dataset() Dataset { return c.dataset }

// CalculateLuckFromBirthDate parses birth and scores it for today.
func (c *Calculator) CalculateLuckFromBirthDate(birth string, gender Gender, calendar CalendarType) (LuckResult, error) {
	t, err := ParseBirthDate(birth)
	if err != nil {
		return LuckResult{}, err
	}
	return c.CalculateLuck(t, gender, calendar), nil
}

func (c *Calculator) CalculateLuck(birth time.Time, gender Gender, calendar CalendarType) LuckResult {
	today := c.now().In(c.loc)
	weekday := today.Weekday()

	stem := StemFromBirthDate(birth)
	element := WeekdayElement(weekday)
	score := clamp(RelationScore(stem, element, gender)+WeekdayBonus(weekday), 0, 100)
	grade := c.grades.GradeFor(score)

	isoToday := today.Format("2006-01-02")
	isoBirth := birth.Format("2006-01-02")
	seed := fmt.Sprintf("%s-%s-%s-%s", isoToday, isoBirth, gender, calendar)

	var idiom *string
	if list := c.dataset.Idioms[grade]; len(list) > 0 {
		picked := list[PickIndex(seed, len(list))]
		idiom = &picked
	}

	return LuckResult{
		Score:   score,
		Grade:   grade,
		Message: c.dataset.MessageFor(grade),
		Idiom:   idiom,
		Meta: Meta{
			Date:         fmt.Sprintf("%d년 %d월 %d일", today.Year(), int(today.Month()), today.Day()),
			ISODate:      isoToday,
			Weekday:      weekdayLabels[weekday],
			Element:      element,
			Stem:         stem.Symbol,
			StemElement:  stem.Element,
			BirthDate:    isoBirth,
			Gender:       gender,
			CalendarType: calendar,
		},
	}
}

// DrawIdiom picks uniformly from the grade's idioms for ad-hoc draws.
func (c *Calculator) DrawIdiom(grade Grade, rng *rand.Rand) (string, bool) {
	list := c.dataset.Idioms[grade]
	if len(list) == 0 {
		return "", false
	}
	return list[rng.Intn(len(list))], true
}
