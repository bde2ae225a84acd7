package recordstore

import (
	"testing"

	. "github.com/fulldump/biff"
)

func TestValidateKey(t *testing.T) {

	AssertNil(ValidateKey("firstRec"))
	AssertNil(ValidateKey("key1"))
	AssertNil(ValidateKey("key with spaces and .dots."))

	AssertEqual(ValidateKey(""), ErrorInvalidKeyFormat)
	AssertEqual(ValidateKey("/Slash/"), ErrorInvalidKeyFormat)
	AssertEqual(ValidateKey(`\Back\slash`), ErrorInvalidKeyFormat)
	AssertEqual(ValidateKey("*Asterisk*"), ErrorInvalidKeyFormat)
	AssertEqual(ValidateKey("&Ampersand&"), ErrorInvalidKeyFormat)
}
