/*
Command acsim generates synthetic calibrator sets for abscal.

Stars get blackbody reference spectra and catalog magnitudes synthesized
through the same transmission model abscal fits, with a chosen
normalization injected as ground truth.  Fitting the written set with
abscal should therefore recover the injected value.  Options allow
adding magnitude scatter and a single gross outlier, which is useful
for exercising sigma clipping.

Usage:

  acsim [options] -o <calibset>   Generate a synthetic calibrator set.
  acsim -v                        Display version and copyright.

Options:

  -n <stars>       number of calibrators (default 50)
  -seed <s>        random seed (default 1)
  -zenith <deg>    true zenith angle of the exposure (default 30)
  -norm <f>        injected throughput normalization (default 0.8)
  -noise <mag>     catalog magnitude scatter (default 0.01)
  -outlier <mag>   offset one star's catalog magnitude by this much
  -o <file>        output file (required)

-------------
Public domain.
*/
package main
