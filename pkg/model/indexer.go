package model

import "sort"

// indexer interface is design to give a unique index to a (course, option) pair and vice versa
type indexer interface {
	// Returns a unique 1-based index for the option-th placement of a course
	Index(course, option int) int64
	// Returns the (course, option) pair a unique index stands for
	Attributes(index int64) (course, option int)
	// Returns the number of indices
	Size() int64
}

// optionIndexer lays the options of every course out consecutively: course i owns indices offsets[i]+1 .. offsets[i+1]
type optionIndexer struct {
	offsets []int64
}

func newIndexer(options [][]Placement) indexer {
	offsets := make([]int64, len(options)+1)
	for i, courseOptions := range options {
		offsets[i+1] = offsets[i] + int64(len(courseOptions))
	}
	return &optionIndexer{offsets: offsets}
}

func (indexer *optionIndexer) Index(course, option int) int64 {
	return indexer.offsets[course] + int64(option) + 1
}

func (indexer *optionIndexer) Attributes(index int64) (course, option int) {
	// First course whose range ends at or after index
	course = sort.Search(len(indexer.offsets)-1, func(i int) bool { return indexer.offsets[i+1] >= index })
	return course, int(index - indexer.offsets[course] - 1)
}

func (indexer *optionIndexer) Size() int64 {
	return indexer.offsets[len(indexer.offsets)-1]
}
