package fortune

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Dataset holds the pre-authored copy a Calculator draws from.
type Dataset struct {
	Messages map[Grade]string   `yaml:"messages" json:"messages"`
	Idioms   map[Grade][]string `yaml:"idioms" json:"idioms"`
}

var defaultDataset = Dataset{
	Messages: map[Grade]string{
		GradeVeryHigh: "오늘은 기운이 활짝 열리는 날입니다. 미뤄 두었던 일을 시작하기에 더없이 좋고, 주변의 도움도 자연스럽게 따라옵니다. 자신감을 갖고 한 걸음 크게 내디뎌 보세요.",
		GradeHigh:     "흐름이 순조로운 하루입니다. 계획한 일들이 무리 없이 풀리고, 사람들과 나누는 대화 속에서 뜻밖의 기회를 얻을 수 있습니다. 작은 호의를 아끼지 마세요.",
		GradeMid:      "무난하고 평온한 하루입니다. 큰 변화를 꾀하기보다 지금의 리듬을 지키는 편이 좋으며, 한 번 더 확인하는 습관이 작은 실수를 막아 줍니다.",
		GradeLow:      "조금은 조심스러운 하루입니다. 서두르면 일이 꼬이기 쉬우니 중요한 결정은 한 박자 늦추고, 몸과 마음의 휴식을 먼저 챙기세요.",
	},
	Idioms: map[Grade][]string{
		GradeVeryHigh: {
			"금상첨화(錦上添花) - 좋은 일에 좋은 일이 더해진다",
			"만사형통(萬事亨通) - 모든 일이 뜻대로 잘 풀린다",
			"일취월장(日就月將) - 날로 달로 나아간다",
			"승승장구(乘勝長驅) - 기세를 타고 거침없이 나아간다",
		},
		GradeHigh: {
			"고진감래(苦盡甘來) - 고생 끝에 낙이 온다",
			"마부작침(磨斧作針) - 꾸준히 하면 결국 이룬다",
			"유비무환(有備無患) - 준비가 있으면 근심이 없다",
			"화기애애(和氣靄靄) - 온화하고 화목한 기운이 가득하다",
		},
		GradeMid: {
			"안분지족(安分知足) - 제 분수를 알고 만족한다",
			"온고지신(溫故知新) - 옛것을 익혀 새것을 안다",
			"우공이산(愚公移山) - 꾸준함이 산을 옮긴다",
			"중용지도(中庸之道) - 치우치지 않는 바른 길을 간다",
		},
		GradeLow: {
			"새옹지마(塞翁之馬) - 화와 복은 돌고 돈다",
			"전화위복(轉禍爲福) - 화가 바뀌어 복이 된다",
			"와신상담(臥薪嘗膽) - 어려움을 견디며 때를 기다린다",
			"칠전팔기(七顚八起) - 넘어져도 다시 일어난다",
		},
	},
}

// DefaultDataset returns a copy of the built-in dataset.
func DefaultDataset() Dataset {
	return defaultDataset.clone()
}

func (d Dataset) clone() Dataset {
	out := Dataset{
		Messages: make(map[Grade]string, len(d.Messages)),
		Idioms:   make(map[Grade][]string, len(d.Idioms)),
	}
	for g, m := range d.Messages {
		out.Messages[g] = m
	}
	for g, list := range d.Idioms {
		out.Idioms[g] = append([]string(nil), list...)
	}
	return out
}

// MessageFor falls back to the built-in message when d has none for grade.
func (d Dataset) MessageFor(grade Grade) string {
	if m, ok := d.Messages[grade]; ok && m != "" {
		return m
	}
	return defaultDataset.Messages[grade]
}

// ParseDataset decodes a YAML dataset. Grades missing from the document keep
// the built-in messages; idiom lists are taken as given.
func ParseDataset(data []byte) (Dataset, error) {
	var doc Dataset
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Dataset{}, fmt.Errorf("failed to parse idiom dataset: %w", err)
	}
	for g := range doc.Messages {
		if _, err := ParseGrade(string(g)); err != nil {
			return Dataset{}, fmt.Errorf("messages: %w", err)
		}
	}
	for g := range doc.Idioms {
		if _, err := ParseGrade(string(g)); err != nil {
			return Dataset{}, fmt.Errorf("idioms: %w", err)
		}
	}

	out := DefaultDataset()
	out.Idioms = make(map[Grade][]string, len(doc.Idioms))
	for g, m := range doc.Messages {
		out.Messages[g] = m
	}
	for g, list := range doc.Idioms {
		out.Idioms[g] = list
	}
	return out, nil
}

// LoadDataset reads a YAML dataset from path.
func LoadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read idiom dataset %s: %w", path, err)
	}
	return ParseDataset(data)
}
