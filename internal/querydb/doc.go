// Package querydb looks keys up across one or more models.
//
// A QueryDB searches a primary model first and then any secondary models in
// the order given; the first model holding a key wins. CacheDB additionally
// memoises computed values so that expensive resolutions are done once.
package querydb
