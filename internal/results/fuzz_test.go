package results

import (
	"encoding/json"
	"strconv"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arqv30/arqv-cli/api/schemas"
)

// fuzzKeys biases generated objects towards the field names projectors read.
var fuzzKeys = []string{
	"perfil_demografico", "dores_viscerais", "drivers_customizados", "roteiro_ativacao",
	"frases_ancoragem", "nome", "materiais", "objecoes_universais", "scripts_customizados",
	"roteiro_completo", "diferenciais_competitivos", "analise_swot", "forcas", "fraquezas",
	"palavras_secundarias", "long_tail", "kpis_principais", "projecoes_financeiras",
	schemas.ScenarioRealistic, schemas.FunnelTop, "estrategias", "atividades",
	"tendencias_atuais", "tendencias_relevantes", "oportunidades_emergentes", "fontes",
	"estatisticas", "generated_at", "quality_score", "local_files", "files", "size",
}

const maxFuzzDepth = 5

func fuzzValue(c *fuzz.ConsumeFuzzer, depth int) (any, error) {
	kind, err := c.GetByte()
	if err != nil {
		return nil, err
	}
	if depth >= maxFuzzDepth {
		kind %= 5
	}
	switch kind % 7 {
	case 0:
		return nil, nil
	case 1:
		b, err := c.GetBool()
		return b, err
	case 2:
		n, err := c.GetInt()
		return json.Number(strconv.Itoa(n)), err
	case 3, 4:
		return c.GetString()
	case 5:
		n, err := c.GetByte()
		if err != nil {
			return nil, err
		}
		arr := make([]any, 0, n%6)
		for i := 0; i < int(n%6); i++ {
			v, err := fuzzValue(c, depth+1)
			if err != nil {
				return arr, nil
			}
			arr = append(arr, v)
		}
		return arr, nil
	default:
		return fuzzObject(c, depth+1)
	}
}

func fuzzObject(c *fuzz.ConsumeFuzzer, depth int) (*schemas.Object, error) {
	obj := schemas.NewObject()
	n, err := c.GetByte()
	if err != nil {
		return obj, nil
	}
	for i := 0; i < int(n%8); i++ {
		k, err := c.GetByte()
		if err != nil {
			break
		}
		v, err := fuzzValue(c, depth)
		if err != nil {
			break
		}
		obj.Set(fuzzKeys[int(k)%len(fuzzKeys)], v)
	}
	return obj, nil
}

// FuzzProject builds structured documents over the real section keys and
// checks that no projector ever panics.
func FuzzProject(f *testing.F) {
	f.Add([]byte{6, 3, 0, 6, 2, 1, 5, 3, 3, 'a'})
	f.Add([]byte("arbitrary seed bytes for the consumer"))

	f.Fuzz(func(t *testing.T, data []byte) {
		c := fuzz.NewConsumer(data)
		doc := schemas.NewObject()
		n, err := c.GetByte()
		if err != nil {
			return
		}
		for i := 0; i < int(n%16); i++ {
			k, err := c.GetByte()
			if err != nil {
				break
			}
			v, err := fuzzValue(c, 0)
			if err != nil {
				break
			}
			doc.Set(schemas.SectionKeys[int(k)%len(schemas.SectionKeys)].String(), v)
		}

		core, logs := observer.New(zapcore.WarnLevel)
		view := NewProjector(zap.New(core)).Project(schemas.NewAnalysisResult(doc))

		if logs.Len() > 0 {
			t.Fatalf("projector panicked: %v", logs.All()[0].ContextMap())
		}
		for _, slot := range view.Slots() {
			if _, present := doc.Get(slot.Section.String()); !present && slot.Fragment.IsPresent() {
				t.Fatalf("fragment produced for absent section %s", slot.Section)
			}
		}
	})
}
