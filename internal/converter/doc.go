// Package converter turns source documents into markdown plus extracted
// image files by shelling out to an external conversion tool.
//
// Conversion output lands in a per-call scratch directory. The caller
// owns the scratch directory after a successful Convert and must remove
// it once the images have been relocated.
package converter
