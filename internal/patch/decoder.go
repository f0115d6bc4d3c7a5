package patch

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/synthgo/internal/ctxlog"
)

// fileConfig is the raw gohcl shape of a single patch file. Scalar block
// fields are pointers so merging can tell "absent" from "zero".
type fileConfig struct {
	Synth       *synthBlock       `hcl:"synth,block"`
	Oscillators []oscillatorBlock `hcl:"oscillator,block"`
	Envelope    *envelopeBlock    `hcl:"envelope,block"`
	Filter      *filterBlock      `hcl:"filter,block"`
	Effects     []effectBlock     `hcl:"effect,block"`
}

type synthBlock struct {
	SampleRate *int     `hcl:"sample_rate,optional"`
	BlockSize  *int     `hcl:"block_size,optional"`
	Gain       *float64 `hcl:"gain,optional"`
	MaxVoices  *int     `hcl:"max_voices,optional"`
}

type oscillatorBlock struct {
	Shape  string   `hcl:"shape,label"`
	Level  *float64 `hcl:"level,optional"`
	Detune *float64 `hcl:"detune,optional"`
}

type envelopeBlock struct {
	Attack  *float64 `hcl:"attack,optional"`
	Decay   *float64 `hcl:"decay,optional"`
	Sustain *float64 `hcl:"sustain,optional"`
	Release *float64 `hcl:"release,optional"`
}

type filterBlock struct {
	Cutoff    *float64 `hcl:"cutoff,optional"`
	Resonance *float64 `hcl:"resonance,optional"`
}

type effectBlock struct {
	Type   string    `hcl:"type,label"`
	Params cty.Value `hcl:"params,optional"`
}

// decodeFile parses and decodes a single HCL patch file.
func decodeFile(ctx context.Context, filePath string) (*fileConfig, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding patch file.", "path", filePath)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filePath, diags.Error())
	}

	var cfg fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filePath, diags.Error())
	}

	logger.Debug("Successfully decoded patch file.", "path", filePath,
		"oscillators_found", len(cfg.Oscillators), "effects_found", len(cfg.Effects))
	return &cfg, nil
}

// decodeParams turns an HCL params object into the flat float map the
// effect factories consume. Every attribute must convert to a number.
func decodeParams(v cty.Value) (map[string]float64, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, fmt.Errorf("params must be an object, got %s", v.Type().FriendlyName())
	}

	out := make(map[string]float64)
	for key, val := range v.AsValueMap() {
		num, err := convert.Convert(val, cty.Number)
		if err != nil {
			return nil, fmt.Errorf("param %q: cannot convert %s to number: %w", key, val.Type().FriendlyName(), err)
		}
		var f float64
		if err := gocty.FromCtyValue(num, &f); err != nil {
			return nil, fmt.Errorf("param %q: %w", key, err)
		}
		out[key] = f
	}
	return out, nil
}
