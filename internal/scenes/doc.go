// Package scenes defines the scene descriptor model and loads ordered scene
// lists from the CSV formats the project has used over time.
package scenes
