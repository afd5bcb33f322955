// Package render implements the concurrent scene-processing pipeline: it
// plans duration-bounded chunks from the ordered scene list, renders scenes
// with a bounded worker pool against the shared media cache, reassembles
// results in scene order, and concatenates each chunk into one output file.
//
// Cancellation is cooperative via context.Context, observed before each
// scene render and at chunk boundaries. Completed chunk outputs survive
// cancellation and are enumerated in the run report.
package render
