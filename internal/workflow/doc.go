// Package workflow owns the creation session. The Store applies every
// mutation as a functional replacement of the session, re-evaluates the
// data-derived step guards after each one, and issues tickets that let late
// generation callbacks be recognised and dropped. The Navigator walks the
// four steps (source, base text, configure, result) and refuses transitions
// with a Rejection the front-end can show inline.
package workflow
