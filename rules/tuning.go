package rules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ParamsHeader is the first line of every tuning file.
const ParamsHeader = "pitch-params v1"

var ErrParamsVersion = errors.New("unsupported tuning file version")

// param binds a tuning-file key to one field of a Params value.
type param struct {
	key string
	f   *float64
	i   *int
	b   *bool
}

func (p *Params) table() []param {
	return []param{
		{key: "BALL_GAP_WEIGHT", f: &p.BallGapWeight},
		{key: "BLOCK_ATTACKER_WEIGHT", f: &p.BlockAttackerWeight},
		{key: "TEAMMATE_GAP_WEIGHT", f: &p.TeammateGapWeight},
		{key: "ENEMY_GAP_WEIGHT", f: &p.EnemyGapWeight},
		{key: "PENAL_DISTANCE", f: &p.PenalDistance},
		{key: "PENAL_WEIGHT", f: &p.PenalWeight},
		{key: "TOTAL_MOVE_WEIGHT", f: &p.TotalMoveWeight},
		{key: "MAX_MOVE_WEIGHT", f: &p.MaxMoveWeight},
		{key: "MOVE_CHANGE_WEIGHT", f: &p.MoveChangeWeight},
		{key: "PASS_CHANGE_WEIGHT", f: &p.PassChangeWeight},
		{key: "KICK_CHANGE_WEIGHT", f: &p.KickChangeWeight},
		{key: "GAP_RATIO", f: &p.GapRatio},
		{key: "VIEW_MARGIN", f: &p.ViewMargin},
		{key: "RAMIFICATION_NUMBER", i: &p.RamificationNumber},
		{key: "CONSTANT_RATE", b: &p.ConstantRate},
		{key: "DECISION_RATE", f: &p.DecisionRate},
		{key: "FULL_REPLAN_PERCENT", f: &p.FullReplanPercent},
		{key: "MOVE_RADIUS_0", f: &p.MoveRadii[0]},
		{key: "MOVE_RADIUS_1", f: &p.MoveRadii[1]},
		{key: "MOVE_RADIUS_2", f: &p.MoveRadii[2]},
		{key: "MIN_KICK_ANGLE", f: &p.MinKickAngle},
		{key: "PREFER_KICK", b: &p.PreferKick},
		{key: "MAX_MOVE_RETRIES", i: &p.MaxMoveRetries},
		{key: "BALL_CLEARANCE", f: &p.BallClearance},
	}
}

func (pr param) set(v string) error {
	switch {
	case pr.f != nil:
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*pr.f = x
	case pr.i != nil:
		x, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*pr.i = x
	case pr.b != nil:
		x, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*pr.b = x
	}
	return nil
}

func (pr param) format() string {
	switch {
	case pr.f != nil:
		return strconv.FormatFloat(*pr.f, 'g', -1, 64)
	case pr.i != nil:
		return strconv.Itoa(*pr.i)
	default:
		return strconv.FormatBool(*pr.b)
	}
}

// ReadParams parses a tuning file over *p. Keys missing from the file keep
// their current value; unknown keys are logged and skipped. On any error *p
// is left untouched.
func ReadParams(r io.Reader, p *Params) error {
	next := *p
	fields := make(map[string]param)
	for _, pr := range next.table() {
		fields[pr.key] = pr
	}

	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read tuning header: %w", err)
		}
		return fmt.Errorf("empty tuning file: %w", ErrParamsVersion)
	}
	if header := strings.TrimSpace(sc.Text()); header != ParamsHeader {
		return fmt.Errorf("header %q: %w", header, ErrParamsVersion)
	}

	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return fmt.Errorf("tuning line %d: expected NAME = value", line)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		pr, known := fields[key]
		if !known {
			slog.Warn("unknown tuning key", "key", key, "line", line)
			continue
		}
		if err := pr.set(value); err != nil {
			return fmt.Errorf("tuning line %d (%s): %w", line, key, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read tuning file: %w", err)
	}

	next.Validate()
	*p = next
	return nil
}

// WriteParams writes p in the tuning file format.
func WriteParams(w io.Writer, p Params) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, ParamsHeader)
	for _, pr := range p.table() {
		fmt.Fprintf(bw, "%s = %s\n", pr.key, pr.format())
	}
	return bw.Flush()
}

// LoadParams reads the tuning file at path over *p.
func LoadParams(path string, p *Params) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open tuning file: %w", err)
	}
	defer f.Close()
	if err := ReadParams(f, p); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// SaveParams writes p to the tuning file at path.
func SaveParams(path string, p Params) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tuning file: %w", err)
	}
	if err := WriteParams(f, p); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
