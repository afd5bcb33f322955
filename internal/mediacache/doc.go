// Package mediacache shares opened source media between concurrent scene
// renders. Handles are keyed by source identifier, reference counted, and
// torn down once at pipeline end; scenes cutting from the same source reuse
// one probe instead of re-opening the file.
package mediacache
