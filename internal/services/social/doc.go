// Package social records follows and acknowledges likes.
package social
