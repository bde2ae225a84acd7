package recordstore

import "errors"

var ErrorInvalidKeyFormat = errors.New("invalid key format")
var ErrorDuplicateKey = errors.New("duplicate key")
var ErrorKeyNotFound = errors.New("key not found")
var ErrorStoreExists = errors.New("record store already exists")
var ErrorStoreNotFound = errors.New("record store not found")
var ErrorStoreInUse = errors.New("record store is in use")
var ErrorStoreClosed = errors.New("record store is closed")
var ErrorUnknownKind = errors.New("unknown record store kind")
