package stash

var AppendInt = appendInt
