package mask_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/agbru/fieldfmt/internal/dom"
	apperrors "github.com/agbru/fieldfmt/internal/errors"
	"github.com/agbru/fieldfmt/internal/logging"
	"github.com/agbru/fieldfmt/internal/mask"
	"github.com/agbru/fieldfmt/internal/mask/mocks"
)

const form = `
<form>
  <input id="a" data-format-phone>
  <input id="b" type="checkbox" data-format-phone>
  <input id="c" type="tel" data-format-phone>
  <textarea id="d" data-format-phone></textarea>
  <input id="e" type="TEXT" data-format-phone>
</form>`

func parse(t *testing.T, html string) *dom.HTMLDocument {
	t.Helper()
	doc, err := dom.ParseFragment(strings.NewReader(html))
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	return doc
}

func idOf(el dom.Element) string {
	id, _ := el.Attr("id")
	return id
}

func TestMasker_AppliesToTextInputsOnly(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	inst := mocks.NewMockInstance(ctrl)

	var attached []string
	engine.EXPECT().Attach(gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(el dom.Element, cfg mask.Config) (mask.Instance, error) {
			attached = append(attached, idOf(el))
			return inst, nil
		})

	m := mask.NewMasker(engine, mask.WithTracer(noop.NewTracerProvider().Tracer("test")))
	res, err := m.Phone(context.Background(), parse(t, form), "[data-format-phone]")
	if err != nil {
		t.Fatalf("Phone failed: %v", err)
	}

	if want := []string{"a", "c", "e"}; !reflect.DeepEqual(attached, want) {
		t.Errorf("attached to %v, want %v", attached, want)
	}
	if res.Matched != 5 || res.Skipped != 2 || res.Failed != 0 || res.Applied() != 3 {
		t.Errorf("result = %+v", res)
	}
	for _, h := range res.Handles {
		if h.Instance != inst || h.Mode != mask.Phone {
			t.Errorf("unexpected handle %+v", h)
		}
	}
}

func TestMasker_PassesResolvedConfig(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	want := mask.Resolve(mask.Phone, mask.WithPrefix("+1"))
	engine.EXPECT().Attach(gomock.Any(), gomock.Any()).
		DoAndReturn(func(el dom.Element, cfg mask.Config) (mask.Instance, error) {
			if !reflect.DeepEqual(cfg, want) {
				t.Errorf("cfg = %+v, want %+v", cfg, want)
			}
			return mocks.NewMockInstance(ctrl), nil
		})

	doc := parse(t, `<input id="phone">`)
	res, err := mask.NewMasker(engine).Phone(context.Background(), doc, "#phone", mask.WithPrefix("+1"))
	if err != nil {
		t.Fatalf("Phone failed: %v", err)
	}
	if res.Handles[0].Config.Prefix != "+1" {
		t.Errorf("handle prefix = %q", res.Handles[0].Config.Prefix)
	}
}

func TestMasker_ConfigsAreIndependentPerElement(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	var configs []mask.Config
	engine.EXPECT().Attach(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(el dom.Element, cfg mask.Config) (mask.Instance, error) {
			configs = append(configs, cfg)
			return mocks.NewMockInstance(ctrl), nil
		})

	doc := parse(t, `<input class="d"><input class="d">`)
	if _, err := mask.NewMasker(engine).Date(context.Background(), doc, ".d"); err != nil {
		t.Fatal(err)
	}
	configs[0].DatePattern[0] = "Y"
	if configs[1].DatePattern[0] != "d" {
		t.Error("elements share the same DatePattern slice")
	}
}

func TestMasker_ContinuesAfterEngineFailure(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	boom := errors.New("boom")

	gomock.InOrder(
		engine.EXPECT().Attach(gomock.Any(), gomock.Any()).Return(mocks.NewMockInstance(ctrl), nil),
		engine.EXPECT().Attach(gomock.Any(), gomock.Any()).Return(nil, boom),
		engine.EXPECT().Attach(gomock.Any(), gomock.Any()).Return(mocks.NewMockInstance(ctrl), nil),
	)

	var buf bytes.Buffer
	m := mask.NewMasker(engine, mask.WithLogger(logging.NewLogger(&buf, "mask")))
	doc := parse(t, `<input name="x"><input name="y"><input name="z">`)
	res, err := m.Number(context.Background(), doc, "input")

	if err == nil {
		t.Fatal("expected an error")
	}
	var maskErr apperrors.MaskError
	if !errors.As(err, &maskErr) {
		t.Fatalf("error %v does not wrap MaskError", err)
	}
	if maskErr.Index != 1 || maskErr.Mode != "number" || maskErr.Selector != "input" {
		t.Errorf("MaskError = %+v", maskErr)
	}
	if !errors.Is(err, boom) {
		t.Error("cause should be reachable with errors.Is")
	}
	if res.Applied() != 2 || res.Failed != 1 {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(buf.String(), "mask attach failed") {
		t.Errorf("log output missing failure: %s", buf.String())
	}
	if apperrors.ExitCodeFor(err) != apperrors.ExitErrorPartial {
		t.Errorf("exit code = %d", apperrors.ExitCodeFor(err))
	}
}

func TestMasker_NoMatchesIsNotAnError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	res, err := mask.NewMasker(engine).Card(context.Background(), parse(t, `<p>nothing</p>`), "input")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Matched != 0 || res.Applied() != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestMasker_InvalidInputsAttachNothing(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	m := mask.NewMasker(engine)
	doc := parse(t, `<input>`)

	_, err := m.Apply(context.Background(), doc, "[broken", mask.Card)
	var validationErr apperrors.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("invalid selector error = %v, want ValidationError", err)
	}

	_, err = m.Apply(context.Background(), doc, "input", mask.Mode(99))
	var configErr apperrors.ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("invalid mode error = %v, want ConfigError", err)
	}
}

func TestMasker_StopsOnCanceledContext(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mask.NewMasker(engine).Time(ctx, parse(t, `<input><input>`), "input")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestMasker_ApplyRules(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	modes := map[string]mask.Mode{}
	engine.EXPECT().Attach(gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(el dom.Element, cfg mask.Config) (mask.Instance, error) {
			switch {
			case cfg.CreditCard:
				modes[idOf(el)] = mask.Card
			case cfg.Date:
				modes[idOf(el)] = mask.Date
			case cfg.Numeral:
				modes[idOf(el)] = mask.Number
			}
			return mocks.NewMockInstance(ctrl), nil
		})

	doc := parse(t, `
		<input id="cc" data-format-card>
		<input id="born" data-format-date>
		<input id="qty" data-format-number>
		<select data-format-phone></select>`)

	results, err := mask.NewMasker(engine).ApplyRules(context.Background(), doc, mask.DefaultRules())
	if err != nil {
		t.Fatalf("ApplyRules failed: %v", err)
	}
	if len(results) != len(mask.Modes()) {
		t.Fatalf("got %d results, want %d", len(results), len(mask.Modes()))
	}
	want := map[string]mask.Mode{"cc": mask.Card, "born": mask.Date, "qty": mask.Number}
	if !reflect.DeepEqual(modes, want) {
		t.Errorf("modes = %v, want %v", modes, want)
	}
	if results[1].Skipped != 1 {
		t.Errorf("phone rule skipped %d, want 1", results[1].Skipped)
	}
}

func TestMasker_ApplyRulesKeepsGoingAfterBadRule(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().Attach(gomock.Any(), gomock.Any()).Return(mocks.NewMockInstance(ctrl), nil)

	rules := []mask.Rule{
		{Selector: "[[", Mode: mask.Card},
		{Selector: "input", Mode: mask.Card},
	}
	results, err := mask.NewMasker(engine).ApplyRules(context.Background(), parse(t, `<input>`), rules)
	if err == nil {
		t.Fatal("expected the bad selector to be reported")
	}
	if len(results) != 2 || results[1].Applied() != 1 {
		t.Errorf("results = %+v", results)
	}
}
