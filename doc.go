/*
Command abscal fits an absolute photometric calibration for a wide-field
survey telescope against a set of calibrator stars.

Contents

Version 0.3

  Program overview
  Command line usage
  Sequence files
  Algorithm outline


Program overview

Input is a calibrator set: reference stars with known spectra, catalog
magnitudes and fluxes, detector pixel coordinates, and the shared
exposure metadata (zenith angle, temperature, pressure).  Output is the
fitted parameter table and a per-stage summary of the calibration
sequence.

The transmission of atmosphere plus instrument is modeled as the
product of Rayleigh scattering, aerosol extinction, ozone, water vapor,
uniformly mixed gas absorption and the instrumental throughput curve.
Free parameters of that model, together with a 2-D polynomial field
correction over the detector plane, are fitted so that synthetic
photometry of the calibrators matches their catalog measurements.

Sample run, using a synthetic set written by the companion command
acsim:

  acsim -n 50 -norm 0.8 -o demo.gob
  abscal demo.gob

which prints a stage table like

  Stage                  Cost  Stars  Clip   Converged
  normalization      0.021310     50     0   true
  instrumental       0.019788     49     1   true
  atmosphere         0.015602     49     0   true
  field              0.015599     49     0   true

followed by the fitted parameter values.


Command line usage

Invoking abscal without arguments (or with invalid arguments) shows
this usage prompt.

  Usage: abscal [options] <calibset>    fit calibration to a calibrator set
         abscal -h                      display help
         abscal -v                      display version and copyright

  Options:
         -s <sequence-file>   YAML stage sequence (default: built-in)
         -j <workers>         cost-evaluation parallelism
         -log <level>         debug, info, warn, error
         -json                JSON log output
         -r                   list per-star residuals


Sequence files

A sequence file lists the stages to run, in order.  Each stage names
the parameters it frees; everything else is held at its current value,
carried over from earlier stages or left at its default.

  stages:
    - name: normalization
      free: [norm]
      sigma_clip: true
      sigma_threshold: 3
      max_clip_iter: 3
    - name: field
      free: [field_x0, field_x1, field_y1, field_xy]
      sigma_clip: true
      sigma_threshold: 3
      max_clip_iter: 3
      field_corr: true

Without -s, a built-in four stage sequence is used: normalization,
instrumental curve shape, atmospheric scalars, field correction.


Algorithm outline

1.  For each stage, the free parameters start from the value fitted by
any earlier stage, or from their configured default.  Fixed parameters
keep whatever value they hold; they are never reset mid-sequence.

2.  A Levenberg-Marquardt fit minimizes the sum of squared magnitude
residuals over the active calibrators.  The residual of a star is its
predicted magnitude, from integrating the modeled transmission against
the star's reference spectrum, minus its catalog magnitude.  In stages
with the field correction active, the 2-D polynomial delta is added in
magnitude space.

3.  After each fit converges, calibrators whose residual magnitude
exceeds the configured multiple of the residual standard deviation are
clipped and the fit repeats on the survivors, up to the stage's pass
budget.  A pass that would clip every remaining star is skipped.

4.  Stage results, including the surviving calibrator subset, carry
forward: the next stage fits over the previous stage's survivors.
Because newly freed parameter families default to exact no-ops, the
cost at the start of a stage equals the final cost of the stage before
it.

-------------
Public domain.
*/
package main
