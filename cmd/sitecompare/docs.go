package main

// General API documentation for swaggo. Build with -tags=swagger to serve it.
//
// @title           sitecompare API
// @version         1.0
// @description     Compare up to ten candidate sites by their enriched demographics.
//
// @BasePath  /
//
// @schemes http
