// Package modulemd is the typed document model for module metadata: module
// streams, module defaults and translations, together with the defaults
// merger and the error taxonomy shared by the codec and index packages.
//
// Objects own their children. Getters hand out copies, so the only way to
// change a document is through the setters of the object that owns it.
package modulemd
