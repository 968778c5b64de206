// Package convert moves instants between the TAI and UTC scales.
//
// The start of UTC day mjd is
//
//	(mjd - 36204) * 86400 + TAIOffset(mjd)
//
// seconds on the TAI scale, where 36204 is the MJD of the TAI epoch. A UTC
// instant is that day start plus its nano-of-day; the reverse direction
// finds the day whose TAI span contains the instant.
package convert
