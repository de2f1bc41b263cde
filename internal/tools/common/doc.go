// Package common provides helpers shared by tool packages, such as the
// instrumented handler wrapper.
package common
