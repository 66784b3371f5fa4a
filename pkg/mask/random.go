// pkg/mask/random.go
package mask

import (
	"math/rand"
	"strings"

	"github.com/David-Botos/data-cleanse/pkg/sensitive"
)

var (
	phonePrefixes = []string{
		"130", "131", "132", "133", "134", "135", "136", "137", "138", "139",
		"150", "151", "152", "153", "155", "156", "157", "158", "159",
		"180", "181", "182", "183", "184", "185", "186", "187", "188", "189",
	}
	emailDomains = []string{"example.com", "test.com", "demo.org", "sample.net"}
	surnames     = []string{"张", "李", "王", "刘", "陈", "杨", "赵", "黄", "周", "吴"}
	givenNames   = []string{"伟", "芳", "娜", "敏", "静", "丽", "强", "磊", "军", "洋"}

	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idCheckChars = "0123456789X"
)

// randomMask generates a random replacement shaped like the original
// type. Re-running the pipeline yields different output.
func randomMask(rng *rand.Rand, value string, t sensitive.Type) string {
	switch t {
	case sensitive.TypePhone:
		return randomPhone(rng)
	case sensitive.TypeIDNumber:
		return randomIDNumber(rng)
	case sensitive.TypeEmail:
		return randomEmail(rng)
	case sensitive.TypeName:
		return randomName(rng)
	default:
		return randomString(rng, len([]rune(value)))
	}
}

func randomPhone(rng *rand.Rand) string {
	var sb strings.Builder
	sb.WriteString(phonePrefixes[rng.Intn(len(phonePrefixes))])
	for i := 0; i < 8; i++ {
		sb.WriteByte(byte('0' + rng.Intn(10)))
	}
	return sb.String()
}

func randomIDNumber(rng *rand.Rand) string {
	var sb strings.Builder
	for i := 0; i < 17; i++ {
		sb.WriteByte(byte('0' + rng.Intn(10)))
	}
	sb.WriteByte(idCheckChars[rng.Intn(len(idCheckChars))])
	return sb.String()
}

func randomEmail(rng *rand.Rand) string {
	length := 5 + rng.Intn(6)
	var sb strings.Builder
	for i := 0; i < length; i++ {
		sb.WriteByte(byte('a' + rng.Intn(26)))
	}
	sb.WriteByte('@')
	sb.WriteString(emailDomains[rng.Intn(len(emailDomains))])
	return sb.String()
}

func randomName(rng *rand.Rand) string {
	name := surnames[rng.Intn(len(surnames))] + givenNames[rng.Intn(len(givenNames))]
	if rng.Intn(2) == 0 {
		name += givenNames[rng.Intn(len(givenNames))]
	}
	return name
}

func randomString(rng *rand.Rand, length int) string {
	if length <= 0 {
		length = 8
	}
	var sb strings.Builder
	for i := 0; i < length; i++ {
		sb.WriteByte(alphanumeric[rng.Intn(len(alphanumeric))])
	}
	return sb.String()
}
